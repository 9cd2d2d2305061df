package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFrame(t *testing.T, js string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(js), &raw))
	return raw
}

func TestIsStreamEvent_TrueWhenSIDWithoutID(t *testing.T) {
	raw := rawFrame(t, `{"sid":"session-1","eeg":[1,2]}`)
	assert.True(t, IsStreamEvent(raw))
}

func TestIsStreamEvent_FalseWhenIDPresent(t *testing.T) {
	raw := rawFrame(t, `{"id":1,"sid":"session-1","eeg":[1,2]}`)
	assert.False(t, IsStreamEvent(raw))
}

func TestIsStreamEvent_FalseWithoutSID(t *testing.T) {
	raw := rawFrame(t, `{"jsonrpc":"2.0","result":{}}`)
	assert.False(t, IsStreamEvent(raw))
}

func TestDecodeStreamEvent_EEG(t *testing.T) {
	raw := rawFrame(t, `{"sid":"session-1","time":123.456,"eeg":[1.1,2.2,3.3]}`)

	ev, err := DecodeStreamEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "session-1", ev.SessionID)
	assert.Equal(t, 123.456, ev.Time)

	rec, ok := ev.Record.(EEGRecord)
	require.True(t, ok)
	assert.Equal(t, StreamEEG, rec.Kind())
	assert.Equal(t, []float64{1.1, 2.2, 3.3}, rec.Values)
}

func TestDecodeStreamEvent_Motion(t *testing.T) {
	raw := rawFrame(t, `{"sid":"s1","mot":[0.1,0.2,0.3,0.4]}`)

	ev, err := DecodeStreamEvent(raw)
	require.NoError(t, err)
	rec, ok := ev.Record.(MotionRecord)
	require.True(t, ok)
	assert.Equal(t, StreamMotion, rec.Kind())
}

func TestDecodeStreamEvent_MentalCommand(t *testing.T) {
	raw := rawFrame(t, `{"sid":"s1","com":["push",0.75]}`)

	ev, err := DecodeStreamEvent(raw)
	require.NoError(t, err)
	rec, ok := ev.Record.(MentalCommandRecord)
	require.True(t, ok)
	assert.Equal(t, "push", rec.Action)
	assert.InDelta(t, 0.75, rec.Power, 0.0001)
}

func TestDecodeStreamEvent_UnknownKeyFallsBackToSystemEvent(t *testing.T) {
	raw := rawFrame(t, `{"sid":"s1","warning":{"code":1,"message":"low battery"}}`)

	ev, err := DecodeStreamEvent(raw)
	require.NoError(t, err)
	rec, ok := ev.Record.(SystemEventRecord)
	require.True(t, ok)
	assert.Equal(t, StreamSystem, rec.Kind())
	assert.Equal(t, "unknown", rec.Key)
}

func TestDecodeStreamEvent_MalformedSIDFails(t *testing.T) {
	raw := rawFrame(t, `{"sid":123,"eeg":[1,2]}`)

	_, err := DecodeStreamEvent(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeStreamEvent_MissingTimeDefaultsZero(t *testing.T) {
	raw := rawFrame(t, `{"sid":"s1","pow":[1,2]}`)

	ev, err := DecodeStreamEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, float64(0), ev.Time)
}

func TestAllRecordKinds_ReportCorrectKind(t *testing.T) {
	cases := []struct {
		name string
		rec  StreamRecord
		want StreamKind
	}{
		{"eeg", EEGRecord{}, StreamEEG},
		{"mot", MotionRecord{}, StreamMotion},
		{"pow", BandPowerRecord{}, StreamBandPower},
		{"met", MetricsRecord{}, StreamMetrics},
		{"com", MentalCommandRecord{}, StreamMentalCommand},
		{"fac", FacialExpressionRecord{}, StreamFacialExpression},
		{"dev", DeviceQualityRecord{}, StreamDeviceQuality},
		{"eq", EEGQualityRecord{}, StreamEEGQuality},
		{"sys", SystemEventRecord{}, StreamSystem},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.rec.Kind(), c.name)
	}
}
