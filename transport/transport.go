package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	corelog "github.com/nova-bci/cortex-go/logger"
	"github.com/nova-bci/cortex-go/protocol"
	"github.com/nova-bci/cortex-go/rpc"
	"github.com/nova-bci/cortex-go/stream"
)

// Config configures a Transport.
type Config struct {
	Conn           ConnConfig
	RequestTimeout time.Duration

	// StreamQueueCapacity sizes every per-(stream,session) bounded queue the
	// transport's demultiplexer creates (spec.md §4.4). Defaults to
	// stream.DefaultQueueCapacity.
	StreamQueueCapacity int

	Logger *slog.Logger
}

// Transport owns one WebSocket connection end-to-end: the single reader
// goroutine, the pending-request registry, and shutdown coordination
// (spec.md §4.3). At most one writer path and one reader task exist per
// instance (spec.md §3's invariant) — writes go straight through the Conn's
// own write mutex rather than a separate writer goroutine, since
// gorilla/websocket requires single-writer discipline anyway (spec.md §9).
type Transport struct {
	conn     *Conn
	registry *Registry
	demux    *stream.Demux
	ids      rpc.IDAllocator
	logger   *slog.Logger
	timeout  time.Duration

	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex
	readerWG sync.WaitGroup
}

// Connect dials the WebSocket endpoint and starts the reader goroutine.
func Connect(ctx context.Context, cfg Config) (*Transport, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = corelog.New("transport")
	}

	conn := NewConn(cfg.Conn)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", protocol.ErrTransport, err)
	}

	t := &Transport{
		conn:     conn,
		registry: NewRegistry(),
		demux:    stream.NewDemux(cfg.StreamQueueCapacity),
		logger:   logger,
		timeout:  cfg.RequestTimeout,
		closeCh:  make(chan struct{}),
	}

	t.readerWG.Add(1)
	go t.readLoop()

	return t, nil
}

// Call sends a JSON-RPC request and waits for its response, honoring
// timeout (falling back to the transport's configured default when zero)
// and ctx cancellation. Both paths synchronously remove the pending entry
// per spec.md §4.3.
func (t *Transport) Call(ctx context.Context, method string, params interface{}, timeout time.Duration) (*rpc.Response, error) {
	if timeout <= 0 {
		timeout = t.timeout
	}

	id := t.ids.Next()
	req, err := rpc.NewRequest(id, method, params)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s request: %s", protocol.ErrInvalidArgument, method, err)
	}

	resultCh := t.registry.Register(id, method)

	data, err := req.Encode()
	if err != nil {
		t.registry.Remove(id)
		return nil, fmt.Errorf("%w: encoding %s request: %s", protocol.ErrInvalidArgument, method, err)
	}

	corelog.RPCCall(method, id, "params", corelog.RedactSensitiveData(string(data)))

	if err := t.conn.SendRaw(data); err != nil {
		t.registry.Remove(id)
		corelog.RPCError(method, id, err)
		return nil, &protocol.Error{Kind: protocol.KindTransport, Method: method, Message: err.Error()}
	}

	timer := deadlineTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Response, nil
	case <-timer.C:
		t.registry.Remove(id)
		return nil, &protocol.Error{Kind: protocol.KindTimeout, Method: method, Message: fmt.Sprintf("timed out after %s", timeout)}
	case <-ctx.Done():
		t.registry.Remove(id)
		if ctx.Err() == context.Canceled {
			// The caller gave up on this call, not the network — the resilient
			// layer must not treat this as a transient failure worth retrying.
			return nil, &protocol.Error{Kind: protocol.KindCanceled, Method: method, Message: ctx.Err().Error()}
		}
		return nil, &protocol.Error{Kind: protocol.KindTimeout, Method: method, Message: ctx.Err().Error()}
	case <-t.closeCh:
		t.registry.Remove(id)
		return nil, &protocol.Error{Kind: protocol.KindConnectionClosed, Method: method, Message: "transport shut down while call was in flight"}
	}
}

// Subscribe returns the bounded receiver for (kind, session), creating it if
// this is the first subscriber (spec.md §4.3's "subscribe(stream, session)
// → receiver" primitive; spec.md §4.4 for the queue itself).
func (t *Transport) Subscribe(kind protocol.StreamKind, session string) *stream.Receiver {
	return t.demux.Subscribe(kind, session)
}

// UnsubscribeQueue stops routing new events to (kind, session)'s queue. It
// does not close any Receiver a consumer already holds — that remains the
// consumer's responsibility (spec.md §4.4's late-subscriber/ownership note).
func (t *Transport) UnsubscribeQueue(kind protocol.StreamKind, session string) {
	t.demux.Unsubscribe(kind, session)
}

// Disconnect signals shutdown, fails every pending call, closes the socket,
// waits for the reader to terminate, and guarantees every pending call has resolved by the time it
// returns (spec.md §4.3's disconnect contract, §8's invariant).
func (t *Transport) Disconnect() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	close(t.closeCh)
	t.closeMu.Unlock()

	t.registry.CancelAll(&protocol.Error{Kind: protocol.KindConnectionClosed, Message: "connection closed"})

	err := t.conn.Close()
	t.readerWG.Wait()
	return err
}

// PendingCount exposes the registry size for tests (spec.md §8).
func (t *Transport) PendingCount() int {
	return t.registry.Len()
}

// readLoop is the transport's single reader task. It reads frames until EOF
// or shutdown, classifying each as a response or a stream event
// (spec.md §4.3's reader-loop contract). Parse failures are logged and do
// not terminate the loop.
func (t *Transport) readLoop() {
	defer t.readerWG.Done()

	ctx := context.Background()
	for {
		select {
		case <-t.closeCh:
			return
		default:
		}

		data, err := t.conn.Receive(ctx)
		if err != nil {
			if t.conn.IsClosed() {
				return
			}
			t.logger.Warn("transport read failed, shutting down", "error", err)
			t.registry.CancelAll(&protocol.Error{Kind: protocol.KindConnectionClosed, Message: err.Error()})
			return
		}

		t.handleFrame(data)
	}
}

func (t *Transport) handleFrame(data []byte) {
	t.logger.Debug("frame received", "data", corelog.RedactSensitiveData(string(data)))

	frame := rpc.Classify(data)
	if frame.Err != nil {
		t.logger.Warn("protocol drift", "error", frame.Err)
		return
	}

	if frame.StreamEvent != nil {
		t.demux.Dispatch(frame.StreamEvent)
		return
	}

	resp := frame.Response
	if resp.ID == nil {
		t.logger.Warn("protocol drift: response missing id")
		return
	}
	id := *resp.ID

	method, _ := t.registry.MethodFor(id)
	var result Result
	if apiErr := rpc.AsError(method, resp); apiErr != nil {
		result = Result{Err: apiErr}
		corelog.RPCError(method, id, apiErr)
	} else {
		result = Result{Response: resp}
		corelog.RPCResponse(method, id)
	}

	if !t.registry.Resolve(id, result) {
		t.logger.Debug("discarding response for unknown request id", "id", id)
	}
}
