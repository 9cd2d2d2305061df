package transport

import (
	"sync"
	"time"

	"github.com/nova-bci/cortex-go/rpc"
)

// Result is what a pending request's oneshot sink resolves to: either a
// decoded JSON-RPC response or a terminal error (spec.md §3, §4.3).
type Result struct {
	Response *rpc.Response
	Err      error
}

// pendingEntry is the registry's record for one in-flight call.
type pendingEntry struct {
	method string
	ch     chan Result
}

// Registry is the transport's pending-request table: RequestId ->
// PendingRequest (spec.md §3). Entries are removed synchronously on
// resolution, timeout, send failure, or cancellation — never left behind
// (spec.md §4.3, §8's invariant).
type Registry struct {
	mu      sync.Mutex
	pending map[uint64]*pendingEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[uint64]*pendingEntry)}
}

// Register creates a pending entry for id and returns the channel its
// result will be delivered on. The channel is buffered (size 1) so the
// reader goroutine never blocks delivering a result to a caller that has
// already given up (timed out or been canceled).
func (r *Registry) Register(id uint64, method string) <-chan Result {
	ch := make(chan Result, 1)
	r.mu.Lock()
	r.pending[id] = &pendingEntry{method: method, ch: ch}
	r.mu.Unlock()
	return ch
}

// Remove synchronously deletes the entry for id without resolving it. Used
// by the caller-side cleanup paths (timeout, cancellation, send failure) per
// spec.md §4.3's "call" contract.
func (r *Registry) Remove(id uint64) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// MethodFor returns the method name registered for id, without removing the
// entry. Used by the reader loop to attribute a decoded error to its
// originating RPC before resolving (spec.md §7's "user-visible failures
// carry the originating RPC method name").
func (r *Registry) MethodFor(id uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pending[id]
	if !ok {
		return "", false
	}
	return entry.method, true
}

// Resolve delivers result to the pending entry for id, if any, and removes
// it from the registry. Returns false if no entry was found (e.g. the
// response arrived after a client-side timeout already removed it).
func (r *Registry) Resolve(id uint64, result Result) bool {
	r.mu.Lock()
	entry, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	entry.ch <- result
	return true
}

// CancelAll resolves every pending entry with err and empties the registry.
// Called on transport shutdown so no caller is left waiting forever
// (spec.md §4.3's disconnect contract, §8's "disconnect always resolves
// every outstanding call" invariant).
func (r *Registry) CancelAll(err error) {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[uint64]*pendingEntry)
	r.mu.Unlock()

	for _, entry := range pending {
		entry.ch <- Result{Err: err}
	}
}

// Len reports the number of in-flight requests, mainly for tests asserting
// the registry drains to zero (spec.md §8).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// deadlineTimer builds the timer Transport.Call uses for its explicit
// timeout; context deadlines are observed through ctx.Done instead.
func deadlineTimer(timeout time.Duration) *time.Timer {
	return time.NewTimer(timeout)
}
