package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadset_UnknownFieldsPreservedAsExtras(t *testing.T) {
	raw := []byte(`{"id":"headset-1","status":"connected","batteryLevel":87}`)

	var h Headset
	require.NoError(t, json.Unmarshal(raw, &h))

	assert.Equal(t, "headset-1", h.ID)
	assert.Equal(t, "connected", h.Status)
	require.Contains(t, h.Extras, "batteryLevel")

	var battery int
	require.NoError(t, json.Unmarshal(h.Extras["batteryLevel"], &battery))
	assert.Equal(t, 87, battery)
}

func TestHeadset_RoundTripPreservesExtras(t *testing.T) {
	raw := []byte(`{"id":"headset-1","status":"connected","batteryLevel":87}`)

	var h Headset
	require.NoError(t, json.Unmarshal(raw, &h))

	out, err := json.Marshal(h)
	require.NoError(t, err)

	var roundTripped Headset
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Equal(t, h, roundTripped)
}

func TestHeadset_NoExtrasWhenAllFieldsKnown(t *testing.T) {
	raw := []byte(`{"id":"headset-1","status":"connected"}`)

	var h Headset
	require.NoError(t, json.Unmarshal(raw, &h))
	assert.Empty(t, h.Extras)
}

func TestSession_RoundTrip(t *testing.T) {
	raw := []byte(`{"id":"session-1","status":"active","headset":"headset-1","recording":true,"extraField":"x"}`)

	var s Session
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "session-1", s.ID)
	assert.True(t, s.Recording)
	require.Contains(t, s.Extras, "extraField")

	out, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "x", decoded["extraField"])
}

func TestRecord_RoundTrip(t *testing.T) {
	raw := []byte(`{"uuid":"rec-1","title":"test run","tags":["a","b"]}`)

	var r Record
	require.NoError(t, json.Unmarshal(raw, &r))
	assert.Equal(t, []string{"a", "b"}, r.Tags)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	var roundTripped Record
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Equal(t, r, roundTripped)
}
