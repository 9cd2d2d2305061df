package resilient

import (
	"sync"
	"sync/atomic"

	corelog "github.com/nova-bci/cortex-go/logger"
	"github.com/nova-bci/cortex-go/protocol"
	"github.com/nova-bci/cortex-go/stream"
)

// Bridge is the stable handle a consumer holds across reconnects for one
// (stream, session) subscription. A raw transport.Subscribe result dies
// with its connection; Bridge re-attaches a fresh internal receiver after
// every reconnect so the caller's channel never needs to change
// (spec.md §4.6, §9's subscription-replay requirement).
type Bridge struct {
	kind    protocol.StreamKind
	session string

	out chan protocol.StreamEvent

	mu       sync.Mutex
	current  *stream.Receiver
	stopPump chan struct{}
	closed   bool

	// bridgeDroppedFull counts events the pump itself discarded because out
	// was full — a second, bridge-level queue in series with the demux's own
	// (spec.md §4.4, §5), so it must be reported alongside the receiver's
	// counters rather than silently absorbed.
	bridgeDroppedFull atomic.Int64
}

// newBridge creates a Bridge with its own outward-facing bounded channel,
// sized the same as the underlying demux queues by default.
func newBridge(kind protocol.StreamKind, session string, capacity int) *Bridge {
	if capacity <= 0 {
		capacity = stream.DefaultQueueCapacity
	}
	return &Bridge{kind: kind, session: session, out: make(chan protocol.StreamEvent, capacity)}
}

// attach points the bridge at a newly (re)established internal receiver,
// stopping any prior pump first. Called once on initial subscribe and again
// after every successful reconnect replay.
func (b *Bridge) attach(r *stream.Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		r.Close()
		return
	}
	if b.stopPump != nil {
		close(b.stopPump)
	}
	if b.current != nil {
		b.current.Close()
	}
	b.current = r
	stop := make(chan struct{})
	b.stopPump = stop
	go b.pump(r, stop)
}

// pump forwards events from the current internal receiver to the bridge's
// stable outward channel until told to stop or the receiver is exhausted.
// A full outward channel drops the newest event, the same "newest loses"
// policy the demux itself applies — the bridge never blocks the reader
// path waiting on a slow consumer.
func (b *Bridge) pump(r *stream.Receiver, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-r.Events():
			if !ok {
				return
			}
			select {
			case b.out <- ev:
			default:
				b.bridgeDroppedFull.Add(1)
			}
		}
	}
}

// Events returns the bridge's stable output channel.
func (b *Bridge) Events() <-chan protocol.StreamEvent {
	return b.out
}

// Counters returns the drop-accounting counters for this bridge's (stream,
// session) subscription, combining the current internal receiver's demux
// counters with drops the bridge's own pump absorbed on a full out channel
// (spec.md §3, §4.4, §5, §8: delivered+dropped_full+dropped_closed must be
// observable end to end, not just at the demux). DroppedFull is the sum of
// both queues; Delivered and DroppedClosed come straight from the receiver,
// since only the demux can tell a released receiver from a live one.
func (b *Bridge) Counters() stream.Counters {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	var c stream.Counters
	if current != nil {
		c = current.Counters()
	}
	c.DroppedFull += b.bridgeDroppedFull.Load()
	return c
}

// Close detaches and releases the bridge permanently, logging the final
// drop-accounting counters for operator visibility into lossy consumers
// (spec.md §5).
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.stopPump != nil {
		close(b.stopPump)
	}
	if b.current != nil {
		b.current.Close()
	}
	b.mu.Unlock()

	c := b.Counters()
	corelog.StreamBackpressure(string(b.kind), b.session, c.Delivered, c.DroppedFull, c.DroppedClosed)
}
