package protocol

import (
	"encoding/json"
	"fmt"
)

// StreamRecord is the tagged-union interface implemented by every typed
// stream payload (spec.md §3, §6). Kind identifies which of the nine
// canonical streams produced the record.
type StreamRecord interface {
	Kind() StreamKind
}

// StreamEvent is the decoded envelope for a single inbound stream frame: the
// session id it belongs to, the raw server timestamp (when present), and the
// typed record itself.
type StreamEvent struct {
	SessionID string
	Time      float64
	Record    StreamRecord
}

// EEGRecord carries one sample of raw channel data.
type EEGRecord struct {
	Channels []string  `json:"-"`
	Values   []float64 `json:"eeg"`
}

func (EEGRecord) Kind() StreamKind { return StreamEEG }

// MotionRecord carries one sample of quaternion + accelerometer + gyroscope
// data.
type MotionRecord struct {
	Values []float64 `json:"mot"`
}

func (MotionRecord) Kind() StreamKind { return StreamMotion }

// BandPowerRecord carries per-channel, per-band power values.
type BandPowerRecord struct {
	Values []float64 `json:"pow"`
}

func (BandPowerRecord) Kind() StreamKind { return StreamBandPower }

// MetricsRecord carries performance-metric values (e.g. engagement,
// excitement, stress, relaxation, interest, focus).
type MetricsRecord struct {
	Values []float64 `json:"met"`
}

func (MetricsRecord) Kind() StreamKind { return StreamMetrics }

// MentalCommandRecord carries a detected mental-command action and power.
type MentalCommandRecord struct {
	Action string  `json:"-"`
	Power  float64 `json:"-"`
	Raw    []interface{} `json:"com"`
}

func (MentalCommandRecord) Kind() StreamKind { return StreamMentalCommand }

// FacialExpressionRecord carries eye, upper-face, and lower-face action
// detections.
type FacialExpressionRecord struct {
	Values []interface{} `json:"fac"`
}

func (FacialExpressionRecord) Kind() StreamKind { return StreamFacialExpression }

// DeviceQualityRecord carries overall headset/contact quality.
type DeviceQualityRecord struct {
	Values []float64 `json:"dev"`
}

func (DeviceQualityRecord) Kind() StreamKind { return StreamDeviceQuality }

// EEGQualityRecord carries per-channel EEG signal quality.
type EEGQualityRecord struct {
	Values []float64 `json:"eq"`
}

func (EEGQualityRecord) Kind() StreamKind { return StreamEEGQuality }

// SystemEventRecord carries an unrecognized or system-level event, routed to
// the "sys" queue for observability (spec.md §4.1).
type SystemEventRecord struct {
	Key string          `json:"-"`
	Raw json.RawMessage `json:"-"`
}

func (SystemEventRecord) Kind() StreamKind { return StreamSystem }

// IsStreamEvent reports whether a raw inbound frame looks like a stream
// event rather than a JSON-RPC response: it has no "id" field and carries a
// "sid" field.
func IsStreamEvent(raw map[string]json.RawMessage) bool {
	if _, hasID := raw["id"]; hasID {
		return false
	}
	_, hasSID := raw["sid"]
	return hasSID
}

// DecodeStreamEvent decodes a raw inbound frame already known to satisfy
// IsStreamEvent into a typed StreamEvent. Unrecognized stream keys decode
// into a SystemEventRecord rather than failing, per spec.md §4.1.
func DecodeStreamEvent(raw map[string]json.RawMessage) (*StreamEvent, error) {
	var sid string
	if v, ok := raw["sid"]; ok {
		if err := json.Unmarshal(v, &sid); err != nil {
			return nil, fmt.Errorf("%w: decoding sid: %s", ErrProtocol, err)
		}
	}
	var ts float64
	if v, ok := raw["time"]; ok {
		_ = json.Unmarshal(v, &ts)
	}

	record, err := decodeStreamRecord(raw)
	if err != nil {
		return nil, err
	}

	return &StreamEvent{SessionID: sid, Time: ts, Record: record}, nil
}

// decodeStreamRecord inspects raw for one of the nine known stream keys and
// decodes into the matching record type. An unrecognized key (that is not
// "sid" or "time") is captured as a SystemEventRecord.
func decodeStreamRecord(raw map[string]json.RawMessage) (StreamRecord, error) {
	for key, data := range raw {
		switch StreamKind(key) {
		case StreamEEG:
			var vals []float64
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding eeg: %s", ErrProtocol, err)
			}
			return EEGRecord{Values: vals}, nil
		case StreamMotion:
			var vals []float64
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding mot: %s", ErrProtocol, err)
			}
			return MotionRecord{Values: vals}, nil
		case StreamBandPower:
			var vals []float64
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding pow: %s", ErrProtocol, err)
			}
			return BandPowerRecord{Values: vals}, nil
		case StreamMetrics:
			var vals []float64
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding met: %s", ErrProtocol, err)
			}
			return MetricsRecord{Values: vals}, nil
		case StreamMentalCommand:
			var raw []interface{}
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("%w: decoding com: %s", ErrProtocol, err)
			}
			rec := MentalCommandRecord{Raw: raw}
			if len(raw) > 0 {
				if s, ok := raw[0].(string); ok {
					rec.Action = s
				}
			}
			if len(raw) > 1 {
				if f, ok := raw[1].(float64); ok {
					rec.Power = f
				}
			}
			return rec, nil
		case StreamFacialExpression:
			var vals []interface{}
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding fac: %s", ErrProtocol, err)
			}
			return FacialExpressionRecord{Values: vals}, nil
		case StreamDeviceQuality:
			var vals []float64
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding dev: %s", ErrProtocol, err)
			}
			return DeviceQualityRecord{Values: vals}, nil
		case StreamEEGQuality:
			var vals []float64
			if err := json.Unmarshal(data, &vals); err != nil {
				return nil, fmt.Errorf("%w: decoding eq: %s", ErrProtocol, err)
			}
			return EEGQualityRecord{Values: vals}, nil
		case StreamSystem:
			return SystemEventRecord{Key: key, Raw: data}, nil
		case "sid", "time":
			continue
		}
	}
	// No known stream key found: treat the whole frame as a system event for
	// observability rather than failing (spec.md §4.1, §4.3 step 3).
	whole, _ := json.Marshal(raw)
	return SystemEventRecord{Key: "unknown", Raw: whole}, nil
}
