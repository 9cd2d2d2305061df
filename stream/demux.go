// Package stream implements the stream demultiplexer: per-(stream,session)
// bounded queues with backpressure accounting (spec.md §4.4).
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/nova-bci/cortex-go/protocol"
)

// DefaultQueueCapacity is the default bounded queue size per subscription.
const DefaultQueueCapacity = 64

// key identifies one active subscription: a stream kind scoped to a session.
type key struct {
	kind    protocol.StreamKind
	session string
}

// Counters holds the three monotonically non-decreasing drop-accounting
// counters from spec.md §4.4, §8: delivered + dropped_full + dropped_closed
// always equals the number of events the demultiplexer observed for that
// stream.
type Counters struct {
	Delivered     int64
	DroppedFull   int64
	DroppedClosed int64
}

// subscription is the demux's internal record for one active (stream,
// session) pair: the bounded delivery queue and its counters.
type subscription struct {
	ch       chan protocol.StreamEvent
	dropped  atomic.Bool // true once the consumer's receiver has been released
	delivered     atomic.Int64
	droppedFull   atomic.Int64
	droppedClosed atomic.Int64
}

// Demux routes inbound stream events to per-(stream,session) bounded queues.
// It is owned exclusively by a single Transport (spec.md §3's ownership
// note): only the transport's reader goroutine calls Dispatch, and only
// callers holding a Receiver read from a queue.
type Demux struct {
	mu    sync.Mutex
	subs  map[key]*subscription
	cap   int
}

// NewDemux creates a Demux whose queues have the given capacity (at least
// 1; DefaultQueueCapacity if capacity <= 0).
func NewDemux(capacity int) *Demux {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Demux{subs: make(map[key]*subscription), cap: capacity}
}

// Subscribe creates (or returns the existing) queue for (kind, session) and
// returns a Receiver the caller uses to read delivered records. Per
// spec.md §4.4, a newly created queue starts empty — there is no replay of
// events seen before Subscribe was called. A repeated Subscribe for the
// same pair shares the existing queue, including anything still buffered
// in it.
func (d *Demux) Subscribe(kind protocol.StreamKind, session string) *Receiver {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := key{kind: kind, session: session}
	sub, ok := d.subs[k]
	if !ok {
		sub = &subscription{ch: make(chan protocol.StreamEvent, d.cap)}
		d.subs[k] = sub
	}
	return &Receiver{demux: d, key: k, sub: sub}
}

// Unsubscribe removes the (kind, session) subscription. Any receiver already
// held by a consumer keeps working until Close is called on it explicitly;
// removing here only stops new Dispatch calls from finding it (future
// events for that pair are discarded without touching any counter, like
// events for a pair that was never subscribed).
func (d *Demux) Unsubscribe(kind protocol.StreamKind, session string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, key{kind: kind, session: session})
}

// Dispatch routes one decoded stream event to its subscription's queue,
// applying the delivery policy from spec.md §4.4: a dropped receiver
// increments dropped_closed; a full queue drops the new record and
// increments dropped_full; otherwise the record is enqueued and delivered
// increments. System events, including frames decoded from unrecognized
// stream keys (spec.md §4.1), go to the (sys, session) queue like any other
// kind. An event with no subscription for its exact (kind, session) pair is
// discarded uncounted; there is no fallback queue.
func (d *Demux) Dispatch(ev *protocol.StreamEvent) {
	kind := ev.Record.Kind()

	d.mu.Lock()
	sub, ok := d.subs[key{kind: kind, session: ev.SessionID}]
	d.mu.Unlock()

	if !ok {
		return // no active subscriber for this (stream, session); nothing to count
	}

	if sub.dropped.Load() {
		sub.droppedClosed.Add(1)
		return
	}

	select {
	case sub.ch <- *ev:
		sub.delivered.Add(1)
	default:
		sub.droppedFull.Add(1)
	}
}

// Receiver is the consumer-owned handle to a subscription's delivery queue.
// Dropping it without calling Close is not detected: deliveries keep
// counting as delivered (or dropped_full once the queue fills), and only
// after Close marks it released do they count as dropped_closed; consumers
// should always call Close when done (spec.md §3's ownership note).
type Receiver struct {
	demux *Demux
	key   key
	sub   *subscription
}

// Events returns the channel of delivered stream events.
func (r *Receiver) Events() <-chan protocol.StreamEvent {
	return r.sub.ch
}

// Counters returns a snapshot of the subscription's drop-accounting
// counters. Safe to read without external locking (spec.md §5).
func (r *Receiver) Counters() Counters {
	return Counters{
		Delivered:     r.sub.delivered.Load(),
		DroppedFull:   r.sub.droppedFull.Load(),
		DroppedClosed: r.sub.droppedClosed.Load(),
	}
}

// Close marks the receiver as released: subsequent Dispatch calls for this
// (stream, session) pair increment DroppedClosed instead of attempting
// delivery (spec.md §4.4, §5, §8).
func (r *Receiver) Close() {
	r.sub.dropped.Store(true)
}
