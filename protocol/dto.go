// Package protocol defines the typed request/response payloads for every
// Cortex v2 method, the nine stream-event record shapes, and the error
// taxonomy shared by the rest of this module. All DTOs are
// forward-compatible: unknown server fields are preserved in an Extras bag
// rather than dropped, so server drift never breaks deserialization
// (spec.md §4.1, §9).
package protocol

import (
	"encoding/json"
	"reflect"
)

// decodeWithExtras unmarshals data into dst (a pointer to a struct whose
// json tags describe the known fields) and collects every top-level key not
// consumed by dst into extras. It performs two passes: one through
// json.Unmarshal for the known fields, one through a map[string]json.RawMessage
// to recover anything left over.
func decodeWithExtras(data []byte, dst interface{}, extras *map[string]json.RawMessage) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	known := knownJSONKeys(dst)
	leftover := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if !known[k] {
			leftover[k] = v
		}
	}
	if len(leftover) > 0 {
		*extras = leftover
	}
	return nil
}

// knownJSONKeys reflects over dst's struct fields to collect the JSON key
// each field decodes from (the portion of its tag before the first comma).
func knownJSONKeys(dst interface{}) map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return keys
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "" {
			keys[f.Name] = true
			continue
		}
		name := tag
		for j := 0; j < len(tag); j++ {
			if tag[j] == ',' {
				name = tag[:j]
				break
			}
		}
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
	return keys
}

// encodeWithExtras marshals dst (the known-field struct) and merges extras
// back into the resulting object, so a round trip of decode-then-encode
// preserves fields this module does not understand.
func encodeWithExtras(dst interface{}, extras map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(dst)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extras {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Session describes a Cortex session record returned by createSession,
// updateSession, and querySessions.
type Session struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	HeadsetID string `json:"headset,omitempty"`
	Started  string `json:"started,omitempty"`
	Recording bool  `json:"recording,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements forward-compatible decoding for Session.
func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	a := (*alias)(s)
	return decodeWithExtras(data, a, &s.Extras)
}

// MarshalJSON implements forward-compatible encoding for Session.
func (s Session) MarshalJSON() ([]byte, error) {
	type alias Session
	return encodeWithExtras(alias(s), s.Extras)
}

// Headset describes a headset record returned by queryHeadsets.
type Headset struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	DongleSerial string  `json:"dongleSerial,omitempty"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
	Sensors     []string `json:"sensors,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (h *Headset) UnmarshalJSON(data []byte) error {
	type alias Headset
	a := (*alias)(h)
	return decodeWithExtras(data, a, &h.Extras)
}

func (h Headset) MarshalJSON() ([]byte, error) {
	type alias Headset
	return encodeWithExtras(alias(h), h.Extras)
}

// Record describes a data recording created by createRecord.
type Record struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDatetime string `json:"startDatetime,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (r *Record) UnmarshalJSON(data []byte) error {
	type alias Record
	a := (*alias)(r)
	return decodeWithExtras(data, a, &r.Extras)
}

func (r Record) MarshalJSON() ([]byte, error) {
	type alias Record
	return encodeWithExtras(alias(r), r.Extras)
}

// Profile describes a BCI training profile.
type Profile struct {
	Name    string `json:"name"`
	Loaded  bool   `json:"loaded,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	type alias Profile
	a := (*alias)(p)
	return decodeWithExtras(data, a, &p.Extras)
}

func (p Profile) MarshalJSON() ([]byte, error) {
	type alias Profile
	return encodeWithExtras(alias(p), p.Extras)
}

// Subject describes a demographic subject record.
type Subject struct {
	UUID        string                 `json:"uuid,omitempty"`
	Name        string                 `json:"subjectName"`
	DateOfBirth string                 `json:"dateOfBirth,omitempty"`
	Sex         string                 `json:"sex,omitempty"`
	Country     string                 `json:"country,omitempty"`
	State       string                 `json:"state,omitempty"`
	City        string                 `json:"city,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (s *Subject) UnmarshalJSON(data []byte) error {
	type alias Subject
	a := (*alias)(s)
	return decodeWithExtras(data, a, &s.Extras)
}

func (s Subject) MarshalJSON() ([]byte, error) {
	type alias Subject
	return encodeWithExtras(alias(s), s.Extras)
}

// TrainingState reports the state of a BCI training request (training RPC).
type TrainingState struct {
	Action string `json:"action"`
	Status string `json:"status"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (t *TrainingState) UnmarshalJSON(data []byte) error {
	type alias TrainingState
	a := (*alias)(t)
	return decodeWithExtras(data, a, &t.Extras)
}

func (t TrainingState) MarshalJSON() ([]byte, error) {
	type alias TrainingState
	return encodeWithExtras(alias(t), t.Extras)
}
