package protocol

import "fmt"

// ThresholdStatus selects whether a threshold/signature RPC is a get or a
// set operation (spec.md §4.1).
type ThresholdStatus string

const (
	ThresholdGet ThresholdStatus = "get"
	ThresholdSet ThresholdStatus = "set"
)

// UpdateRecord requests a metadata update on an existing record. Unset
// optional fields are omitted from the wire request rather than sent as
// zero values, so a partial update never clobbers server-side fields the
// caller did not intend to touch.
type UpdateRecord struct {
	RecordID    string   `json:"record,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate checks local invariants before the request is sent.
func (r UpdateRecord) Validate() error {
	if r.RecordID == "" {
		return fmt.Errorf("%w: record id is required", ErrInvalidArgument)
	}
	return nil
}

// SubjectRequest is used for both createSubject and updateSubject; the
// server distinguishes the two by method name, not payload shape.
type SubjectRequest struct {
	Name        string                 `json:"subjectName"`
	DateOfBirth *string                `json:"dateOfBirth,omitempty"`
	Sex         *string                `json:"sex,omitempty"`
	Country     *string                `json:"country,omitempty"`
	State       *string                `json:"state,omitempty"`
	City        *string                `json:"city,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

func (s SubjectRequest) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: subject name is required", ErrInvalidArgument)
	}
	return nil
}

// QuerySubjects parameterizes querySubjects.
type QuerySubjects struct {
	Query   map[string]interface{} `json:"query,omitempty"`
	OrderBy []map[string]string    `json:"orderBy,omitempty"`
	Limit   *int                   `json:"limit,omitempty"`
	Offset  *int                   `json:"offset,omitempty"`
}

func (q QuerySubjects) Validate() error { return nil }

// MentalCommandTrainingThreshold parameterizes
// mentalCommandTrainingThreshold. Exactly one of Session/Profile must be
// set, and Value is required when Status is "set" (spec.md §4.1).
type MentalCommandTrainingThreshold struct {
	Session *string         `json:"session,omitempty"`
	Profile *string         `json:"profile,omitempty"`
	Status  ThresholdStatus `json:"status"`
	Value   *int            `json:"value,omitempty"`
}

func (m MentalCommandTrainingThreshold) Validate() error {
	if err := validateSessionOrProfile(m.Session, m.Profile); err != nil {
		return err
	}
	if m.Status == ThresholdSet && m.Value == nil {
		return fmt.Errorf("%w: value is required when status=set", ErrInvalidArgument)
	}
	return nil
}

// FacialExpressionSignatureType parameterizes facialExpressionSignatureType.
type FacialExpressionSignatureType struct {
	Status    ThresholdStatus `json:"status"`
	Profile   *string         `json:"profile,omitempty"`
	Session   *string         `json:"session,omitempty"`
	Signature *string         `json:"signature,omitempty"`
}

func (f FacialExpressionSignatureType) Validate() error {
	if err := validateSessionOrProfile(f.Session, f.Profile); err != nil {
		return err
	}
	if f.Status == ThresholdSet && f.Signature == nil {
		return fmt.Errorf("%w: signature is required when status=set", ErrInvalidArgument)
	}
	return nil
}

// FacialExpressionThreshold parameterizes facialExpressionThreshold.
type FacialExpressionThreshold struct {
	Status  ThresholdStatus `json:"status"`
	Action  string          `json:"action"`
	Profile *string         `json:"profile,omitempty"`
	Session *string         `json:"session,omitempty"`
	Value   *int            `json:"value,omitempty"`
}

func (f FacialExpressionThreshold) Validate() error {
	if f.Action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidArgument)
	}
	if err := validateSessionOrProfile(f.Session, f.Profile); err != nil {
		return err
	}
	if f.Status == ThresholdSet && f.Value == nil {
		return fmt.Errorf("%w: value is required when status=set", ErrInvalidArgument)
	}
	return nil
}

// QueryHeadsets parameterizes queryHeadsets.
type QueryHeadsets struct {
	ID *string `json:"id,omitempty"`
}

func (q QueryHeadsets) Validate() error { return nil }

// ConfigMapping parameterizes configMapping (channel/mode mapping for a
// headset). Precise semantics of undocumented mode variants are an open
// question per spec.md §9; this only validates the fields it knows about.
type ConfigMapping struct {
	Headset string                 `json:"headset"`
	Mode    string                 `json:"mode"`
	Mapping map[string]string      `json:"mapping,omitempty"`
}

func (c ConfigMapping) Validate() error {
	if c.Headset == "" {
		return fmt.Errorf("%w: headset is required", ErrInvalidArgument)
	}
	if c.Mode == "" {
		return fmt.Errorf("%w: mode is required", ErrInvalidArgument)
	}
	return nil
}

// HeadsetClockSync parameterizes syncWithHeadsetClock.
type HeadsetClockSync struct {
	Headset       string `json:"headset"`
	MonotonicTime int64  `json:"monotonicTime"`
	SystemTime    int64  `json:"systemTime"`
}

func (h HeadsetClockSync) Validate() error {
	if h.Headset == "" {
		return fmt.Errorf("%w: headset is required", ErrInvalidArgument)
	}
	return nil
}

// validateSessionOrProfile enforces the "exactly one of session/profile"
// exclusivity rule shared by several training/threshold requests.
func validateSessionOrProfile(session, profile *string) error {
	switch {
	case session == nil && profile == nil:
		return fmt.Errorf("%w: one of session or profile is required", ErrInvalidArgument)
	case session != nil && profile != nil:
		return fmt.Errorf("%w: session and profile are mutually exclusive", ErrInvalidArgument)
	}
	return nil
}
