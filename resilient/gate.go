package resilient

import (
	"golang.org/x/sync/singleflight"
)

// reconnectGate ensures at most one reconnect attempt is ever in flight for
// a given ResilientClient (spec.md §4.6): concurrent callers that each
// observe a dropped connection all wait on the same underlying attempt
// instead of racing to dial multiple sockets.
type reconnectGate struct {
	group singleflight.Group
}

// run executes fn under the gate's single-flight key, so overlapping calls
// share one in-flight reconnect and its result.
func (g *reconnectGate) run(fn func() (interface{}, error)) error {
	_, err, _ := g.group.Do("reconnect", fn)
	return err
}
