package resilient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-bci/cortex-go/protocol"
	"github.com/nova-bci/cortex-go/stream"
)

func TestBridge_CountersReflectAttachedReceiver(t *testing.T) {
	d := stream.NewDemux(4)
	recv := d.Subscribe(protocol.StreamEEG, "session-1")
	d.Dispatch(&protocol.StreamEvent{SessionID: "session-1", Record: protocol.EEGRecord{Values: []float64{1}}})

	b := newBridge(protocol.StreamEEG, "session-1", 4)
	b.attach(recv)

	require.Eventually(t, func() bool {
		return b.Counters().Delivered == 1
	}, time.Second, time.Millisecond)

	c := b.Counters()
	assert.Equal(t, int64(1), c.Delivered)
	assert.Equal(t, int64(0), c.DroppedFull)
	assert.Equal(t, int64(0), c.DroppedClosed)

	b.Close()
}

func TestBridge_CountersAccountForBridgeLevelDrops(t *testing.T) {
	d := stream.NewDemux(64)
	recv := d.Subscribe(protocol.StreamEEG, "session-1")

	b := newBridge(protocol.StreamEEG, "session-1", 1) // tiny outward channel
	b.attach(recv)

	for i := 0; i < 5; i++ {
		d.Dispatch(&protocol.StreamEvent{SessionID: "session-1", Record: protocol.EEGRecord{Values: []float64{1}}})
	}

	require.Eventually(t, func() bool {
		return b.Counters().Delivered+b.Counters().DroppedFull == 5
	}, time.Second, time.Millisecond)

	c := b.Counters()
	assert.Greater(t, c.DroppedFull, int64(0), "a 1-capacity out channel must drop some of 5 rapid events")

	b.Close()
}

func TestBridge_CountersSurviveReattach(t *testing.T) {
	d1 := stream.NewDemux(4)
	recv1 := d1.Subscribe(protocol.StreamEEG, "session-1")
	d1.Dispatch(&protocol.StreamEvent{SessionID: "session-1", Record: protocol.EEGRecord{Values: []float64{1}}})

	b := newBridge(protocol.StreamEEG, "session-1", 4)
	b.attach(recv1)
	require.Eventually(t, func() bool { return b.Counters().Delivered == 1 }, time.Second, time.Millisecond)

	d2 := stream.NewDemux(4)
	recv2 := d2.Subscribe(protocol.StreamEEG, "session-1")
	d2.Dispatch(&protocol.StreamEvent{SessionID: "session-1", Record: protocol.EEGRecord{Values: []float64{1}}})

	b.attach(recv2) // simulates reconnect replay re-attaching a fresh receiver
	require.Eventually(t, func() bool { return b.Counters().Delivered == 1 }, time.Second, time.Millisecond)

	b.Close()
}
