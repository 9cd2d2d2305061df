package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-bci/cortex-go/protocol"
)

func eegEvent(session string) *protocol.StreamEvent {
	return &protocol.StreamEvent{
		SessionID: session,
		Time:      1.0,
		Record:    protocol.EEGRecord{Values: []float64{1, 2, 3}},
	}
}

func TestDemux_DispatchDeliversToSubscriber(t *testing.T) {
	d := NewDemux(4)
	recv := d.Subscribe(protocol.StreamEEG, "session-1")

	d.Dispatch(eegEvent("session-1"))

	select {
	case ev := <-recv.Events():
		assert.Equal(t, "session-1", ev.SessionID)
	default:
		t.Fatal("expected an event to be delivered")
	}

	assert.Equal(t, Counters{Delivered: 1}, recv.Counters())
}

func TestDemux_DispatchWithNoSubscriberIsNoop(t *testing.T) {
	d := NewDemux(4)
	// No subscriber registered; dispatch must not panic or block.
	d.Dispatch(eegEvent("session-1"))
}

func TestDemux_DispatchScopedBySessionAndKind(t *testing.T) {
	d := NewDemux(4)
	recvA := d.Subscribe(protocol.StreamEEG, "session-a")
	recvB := d.Subscribe(protocol.StreamEEG, "session-b")

	d.Dispatch(eegEvent("session-a"))

	select {
	case <-recvA.Events():
	default:
		t.Fatal("expected session-a to receive its event")
	}
	select {
	case <-recvB.Events():
		t.Fatal("session-b must not receive session-a's event")
	default:
	}
}

func TestDemux_DropsWhenQueueFull(t *testing.T) {
	d := NewDemux(1)
	recv := d.Subscribe(protocol.StreamEEG, "session-1")

	d.Dispatch(eegEvent("session-1")) // fills capacity-1 queue
	d.Dispatch(eegEvent("session-1")) // should be dropped_full

	counters := recv.Counters()
	assert.Equal(t, int64(1), counters.Delivered)
	assert.Equal(t, int64(1), counters.DroppedFull)
}

func TestDemux_DropsAfterReceiverClosed(t *testing.T) {
	d := NewDemux(4)
	recv := d.Subscribe(protocol.StreamEEG, "session-1")
	recv.Close()

	d.Dispatch(eegEvent("session-1"))

	counters := recv.Counters()
	assert.Equal(t, int64(0), counters.Delivered)
	assert.Equal(t, int64(1), counters.DroppedClosed)
}

func TestDemux_UnsubscribeStopsFutureDeliveries(t *testing.T) {
	d := NewDemux(4)
	recv := d.Subscribe(protocol.StreamEEG, "session-1")
	d.Unsubscribe(protocol.StreamEEG, "session-1")

	d.Dispatch(eegEvent("session-1"))

	select {
	case <-recv.Events():
		t.Fatal("expected no event after unsubscribe")
	default:
	}
}

func TestDemux_SubscribeTwiceReturnsSameQueue(t *testing.T) {
	d := NewDemux(4)
	recvFirst := d.Subscribe(protocol.StreamEEG, "session-1")

	d.Dispatch(eegEvent("session-1"))

	recvSecond := d.Subscribe(protocol.StreamEEG, "session-1")
	select {
	case ev := <-recvSecond.Events():
		assert.Equal(t, "session-1", ev.SessionID)
	default:
		t.Fatal("expected the pre-existing queue's buffered event to be visible to a second Subscribe call")
	}

	_ = recvFirst
}

func TestDemux_LateSubscriberStartsEmpty(t *testing.T) {
	d := NewDemux(4)
	// Dispatch with nobody subscribed yet: must be dropped silently, not
	// buffered for a future subscriber (spec.md §4.4).
	d.Dispatch(eegEvent("session-1"))

	recv := d.Subscribe(protocol.StreamEEG, "session-1")
	select {
	case <-recv.Events():
		t.Fatal("expected no replay of pre-subscribe events")
	default:
	}
	require.Equal(t, Counters{}, recv.Counters())
}

func TestDemux_DefaultQueueCapacityAppliedWhenNonPositive(t *testing.T) {
	d := NewDemux(0)
	assert.Equal(t, DefaultQueueCapacity, d.cap)

	d2 := NewDemux(-5)
	assert.Equal(t, DefaultQueueCapacity, d2.cap)
}
