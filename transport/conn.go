// Package transport owns the WebSocket lifecycle: a single duplex
// connection, a pending-request registry, and the reader loop that
// demultiplexes inbound frames into responses and stream events
// (spec.md §4.3).
package transport

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Default connection constants.
const (
	DefaultDialTimeout    = 10 * time.Second
	DefaultWriteWait      = 10 * time.Second
	DefaultMaxMessageSize = 16 * 1024 * 1024 // 16MB, generous for batched EEG frames
	DefaultCloseGracePeriod = 5 * time.Second
)

// jitterFactor is the +-25% jitter applied to dial-retry backoff delays.
const jitterFactor = 0.25
const jitterPrecision = 1000
const jitterHalfPrecision = jitterPrecision / 2

// ConnConfig configures the low-level WebSocket connection.
type ConnConfig struct {
	// URL is the wss:// Cortex endpoint.
	URL string

	// Headers are sent during the WebSocket handshake.
	Headers http.Header

	// InsecureSkipVerify allows self-signed localhost certificates
	// (spec.md §6) — only meant for the default localhost deployment.
	InsecureSkipVerify bool

	DialTimeout      time.Duration
	WriteWait        time.Duration
	MaxMessageSize   int64
	CloseGracePeriod time.Duration
}

func (c *ConnConfig) defaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.WriteWait == 0 {
		c.WriteWait = DefaultWriteWait
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.CloseGracePeriod == 0 {
		c.CloseGracePeriod = DefaultCloseGracePeriod
	}
}

// Conn is a thin wrapper around *websocket.Conn providing a single write
// mutex (gorilla/websocket requires serialized writes), a read-limit, and a
// close-frame handshake. It holds no request/response state — that is the
// Transport's job.
type Conn struct {
	cfg ConnConfig

	conn    *websocket.Conn
	mu      sync.Mutex
	writeMu sync.Mutex
	closed  bool
}

// NewConn creates a Conn. Call Connect to establish the socket.
func NewConn(cfg ConnConfig) *Conn {
	cfg.defaults()
	return &Conn{cfg: cfg}
}

// Connect dials the WebSocket endpoint.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("connection is closed")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.DialTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: c.cfg.InsecureSkipVerify, //nolint:gosec // opt-in for local Cortex service only
		},
	}

	conn, resp, err := dialer.DialContext(ctx, c.cfg.URL, c.cfg.Headers)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn = conn
	return nil
}

// ConnectWithRetry dials with exponential backoff and jitter, for the
// initial connect (the resilient client's steady-state reconnect policy in
// package resilient is distinct and configurable per spec.md §4.6).
func (c *Conn) ConnectWithRetry(ctx context.Context, maxAttempts int, base, maxDelay time.Duration) error {
	var lastErr error
	delay := base
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Connect(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < maxAttempts {
			wait := calculateBackoff(delay, maxDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, lastErr)
}

// SendRaw writes pre-encoded data as a single text frame.
func (c *Conn) SendRaw(data []byte) error {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return fmt.Errorf("websocket is not connected")
	}
	conn := c.conn
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Receive reads a single frame, blocking until one arrives, the connection
// errors, or ctx is canceled.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("websocket is not connected")
	}
	conn := c.conn
	c.mu.Unlock()

	type readResult struct {
		msgType int
		data    []byte
		err     error
	}
	ch := make(chan readResult, 1)
	go func() {
		msgType, data, err := conn.ReadMessage()
		ch <- readResult{msgType, data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.msgType != websocket.TextMessage && r.msgType != websocket.BinaryMessage {
			return nil, fmt.Errorf("unexpected message type: %d", r.msgType)
		}
		return r.data, nil
	}
}

// SendPing writes a WebSocket ping control frame.
func (c *Conn) SendPing() error {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return fmt.Errorf("websocket is not connected")
	}
	conn := c.conn
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait))
}

// Close sends a close frame (best effort) and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.conn == nil {
		return nil
	}

	c.writeMu.Lock()
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.CloseGracePeriod))
	_ = c.conn.WriteMessage(websocket.CloseMessage, closeMsg)
	c.writeMu.Unlock()

	return c.conn.Close()
}

// IsClosed reports whether Close has been called.
func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// calculateBackoff computes a dial-retry backoff with +-25% jitter, capped
// at maxDelay. Used only by Connect-level retries the Conn itself performs;
// the resilient client's own reconnect backoff (spec.md §4.6) is a separate,
// higher-level policy in package resilient.
func calculateBackoff(base, maxDelay time.Duration) time.Duration {
	delay := float64(base)
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(jitterPrecision))
	jitter := delay * jitterFactor * (float64(n.Int64())/jitterHalfPrecision - 1)
	result := delay + jitter
	if result < 0 {
		result = float64(base)
	}
	if result > float64(maxDelay) {
		result = float64(maxDelay)
	}
	return time.Duration(math.Max(result, 0))
}
