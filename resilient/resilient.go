// Package resilient implements ResilientClient: a CortexClient wrapper that
// survives token expiry and connection drops transparently (spec.md §4.6).
// It owns the token lifecycle, drives reconnection with backoff, and
// replays subscriptions onto stable caller-held channels across reconnects.
package resilient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nova-bci/cortex-go/client"
	corelog "github.com/nova-bci/cortex-go/logger"
	"github.com/nova-bci/cortex-go/protocol"
)

// State is one of the ResilientClient's lifecycle states (spec.md §4.6).
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateAuthenticated State = "authenticated"
	StateSubscribed   State = "subscribed"
	StateDegraded     State = "degraded" // reconnecting after a dropped connection
	StateClosed       State = "closed"
)

// Config configures a ResilientClient. Endpoint, ClientID, and ClientSecret
// are required; everything else has a documented default.
type Config struct {
	Endpoint           string
	InsecureSkipVerify bool

	ClientID     string
	ClientSecret string
	License      *string

	RequestTimeout      time.Duration
	StreamQueueCapacity int

	Reconnect ReconnectPolicy
	Logger    *slog.Logger
}

func (c Config) clientConfig() client.Config {
	return client.Config{
		Endpoint:            c.Endpoint,
		InsecureSkipVerify:  c.InsecureSkipVerify,
		RequestTimeout:      c.RequestTimeout,
		StreamQueueCapacity: c.StreamQueueCapacity,
		Logger:              c.Logger,
	}
}

// subscription tracks one active (kind, session) subscription so it can be
// replayed after a reconnect.
type subscription struct {
	kind    protocol.StreamKind
	session string
	bridge  *Bridge
}

// ResilientClient wraps client.CortexClient with automatic reconnection,
// token refresh-and-retry, and subscription replay (spec.md §4.6).
type ResilientClient struct {
	cfg    Config
	logger *slog.Logger

	gate reconnectGate

	mu      sync.Mutex
	state   State
	raw     *client.CortexClient
	token   string
	subs    []*subscription
	connID  string // correlates log lines across a single physical connection's lifetime
}

// Connect dials the endpoint, authorizes, and returns a ready
// ResilientClient. Reconnection and replay only apply to calls made after
// this point — the initial connect is a single attempt (spec.md §4.6).
func Connect(ctx context.Context, cfg Config) (*ResilientClient, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = corelog.New("resilient")
	}
	if cfg.Reconnect == (ReconnectPolicy{}) {
		cfg.Reconnect = DefaultReconnectPolicy
	}

	rc := &ResilientClient{cfg: cfg, logger: logger, state: StateDisconnected}

	raw, err := client.Connect(ctx, cfg.clientConfig())
	if err != nil {
		return nil, err
	}
	rc.raw = raw
	rc.state = StateConnecting
	rc.connID = uuid.NewString()
	rc.logger.Info("connected", "conn_id", rc.connID, "endpoint", cfg.Endpoint)

	token, err := rc.authorize(ctx, raw)
	if err != nil {
		raw.Disconnect()
		return nil, err
	}
	rc.token = token
	rc.state = StateAuthenticated

	return rc, nil
}

// ConnectionID returns the identifier correlating log lines for the
// current physical connection. It changes on every successful reconnect
// (spec.md §4.6) so operators can tell which attempt a given log line
// belongs to.
func (rc *ResilientClient) ConnectionID() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.connID
}

func (rc *ResilientClient) authorize(ctx context.Context, raw *client.CortexClient) (string, error) {
	return raw.Authorize(ctx, rc.cfg.ClientID, rc.cfg.ClientSecret, rc.cfg.License, 1)
}

// State returns the client's current lifecycle state.
func (rc *ResilientClient) State() State {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// Call invokes fn (one of client.CortexClient's authenticated methods, via
// a closure capturing the raw client and current token) with retry-once
// semantics per spec.md §4.6: a TokenInvalid error triggers exactly one
// token refresh and retry; a transport/connection-closed/timeout error
// triggers exactly one reconnect-and-retry. Any other error, or a second
// failure after the retry, is returned to the caller unchanged.
func (rc *ResilientClient) Call(ctx context.Context, fn func(raw *client.CortexClient, token string) error) error {
	rc.mu.Lock()
	raw, token := rc.raw, rc.token
	rc.mu.Unlock()

	err := fn(raw, token)
	if err == nil {
		return nil
	}
	if !protocol.Retryable(err) {
		return err
	}

	switch protocol.KindOf(err) {
	case protocol.KindTokenInvalid:
		newToken, rerr := rc.refreshToken(ctx)
		if rerr != nil {
			return err
		}
		rc.mu.Lock()
		raw = rc.raw
		rc.mu.Unlock()
		return fn(raw, newToken)

	case protocol.KindConnectionClosed, protocol.KindTransport, protocol.KindTimeout:
		if rerr := rc.reconnect(ctx); rerr != nil {
			return err
		}
		rc.mu.Lock()
		raw, token = rc.raw, rc.token
		rc.mu.Unlock()
		return fn(raw, token)
	}
	return err
}

func (rc *ResilientClient) refreshToken(ctx context.Context) (string, error) {
	rc.mu.Lock()
	raw, oldToken := rc.raw, rc.token
	rc.mu.Unlock()

	newToken, err := raw.GenerateNewToken(ctx, rc.cfg.ClientID, rc.cfg.ClientSecret, oldToken)
	if err != nil {
		return "", err
	}

	rc.mu.Lock()
	rc.token = newToken
	rc.mu.Unlock()
	return newToken, nil
}

// reconnect tears down the current transport, dials a fresh one, re-
// authorizes, and replays every active subscription onto its existing
// bridge (spec.md §4.6, §9). At most one reconnect runs at a time across
// all concurrent callers (the reconnectGate); callers that arrive while one
// is in flight block on the same attempt and share its result.
func (rc *ResilientClient) reconnect(ctx context.Context) error {
	return rc.gate.run(func() (interface{}, error) {
		rc.mu.Lock()
		rc.state = StateDegraded
		old := rc.raw
		rc.mu.Unlock()

		if old != nil {
			old.Disconnect()
		}

		attempt := func() (struct{}, error) {
			raw, err := client.Connect(ctx, rc.cfg.clientConfig())
			if err != nil {
				return struct{}{}, err
			}
			token, err := rc.authorize(ctx, raw)
			if err != nil {
				raw.Disconnect()
				return struct{}{}, err
			}

			newConnID := uuid.NewString()
			rc.mu.Lock()
			rc.raw = raw
			rc.token = token
			rc.connID = newConnID
			subs := append([]*subscription(nil), rc.subs...)
			rc.mu.Unlock()
			rc.logger.Info("reconnected", "conn_id", newConnID, "endpoint", rc.cfg.Endpoint)

			for _, s := range subs {
				receivers, err := raw.Subscribe(ctx, token, s.session, []protocol.StreamKind{s.kind})
				if err != nil {
					rc.logger.Warn("subscription replay failed", "stream", s.kind, "session", s.session, "error", err)
					continue
				}
				if r, ok := receivers[s.kind]; ok {
					s.bridge.attach(r)
				}
			}

			return struct{}{}, nil
		}

		err := retryReconnect(ctx, rc.cfg.Reconnect, attempt)

		rc.mu.Lock()
		if err == nil {
			if len(rc.subs) > 0 {
				rc.state = StateSubscribed
			} else {
				rc.state = StateAuthenticated
			}
		}
		rc.mu.Unlock()

		return struct{}{}, err
	})
}

// Subscribe subscribes to the given streams on a session and returns a
// stable bridge.Events() channel per stream kind that survives future
// reconnects (spec.md §4.6, §9).
func (rc *ResilientClient) Subscribe(ctx context.Context, sessionID string, kinds []protocol.StreamKind) (map[protocol.StreamKind]*Bridge, error) {
	rc.mu.Lock()
	raw, token, capacity := rc.raw, rc.token, rc.cfg.StreamQueueCapacity
	rc.mu.Unlock()

	receivers, err := raw.Subscribe(ctx, token, sessionID, kinds)
	if err != nil {
		return nil, err
	}

	out := make(map[protocol.StreamKind]*Bridge, len(receivers))
	rc.mu.Lock()
	for kind, recv := range receivers {
		b := newBridge(kind, sessionID, capacity)
		b.attach(recv)
		rc.subs = append(rc.subs, &subscription{kind: kind, session: sessionID, bridge: b})
		out[kind] = b
	}
	rc.state = StateSubscribed
	rc.mu.Unlock()

	return out, nil
}

// Unsubscribe removes a subscription from the replay set and closes its
// bridge. Calling it twice for the same (kind, session) leaves the replay
// set unchanged the second time (spec.md §4.4/§8's idempotence
// requirement); the unsubscribe RPC is still sent and its error returned.
func (rc *ResilientClient) Unsubscribe(ctx context.Context, sessionID string, kinds []protocol.StreamKind) error {
	rc.mu.Lock()
	raw, token := rc.raw, rc.token
	rc.mu.Unlock()

	err := raw.Unsubscribe(ctx, token, sessionID, kinds)

	rc.mu.Lock()
	kept := rc.subs[:0]
	for _, s := range rc.subs {
		remove := false
		for _, k := range kinds {
			if s.kind == k && s.session == sessionID {
				remove = true
				break
			}
		}
		if remove {
			s.bridge.Close()
		} else {
			kept = append(kept, s)
		}
	}
	rc.subs = kept
	rc.mu.Unlock()

	return err
}

// Disconnect closes the underlying transport and releases every bridge.
// The ResilientClient must not be used afterward.
func (rc *ResilientClient) Disconnect() error {
	rc.mu.Lock()
	rc.state = StateClosed
	raw := rc.raw
	subs := rc.subs
	rc.subs = nil
	rc.mu.Unlock()

	for _, s := range subs {
		s.bridge.Close()
	}
	if raw == nil {
		return nil
	}
	return raw.Disconnect()
}

// ensureRaw is a defensive accessor used by tests to assert a non-nil raw
// client after Connect (spec.md §8).
func (rc *ResilientClient) ensureRaw() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.raw == nil {
		return fmt.Errorf("%w: no active connection", protocol.ErrConnectionClosed)
	}
	return nil
}
