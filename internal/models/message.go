package models

import (
	"encoding/json"
	"fmt"
)

// FaultValue is the binary value carried by leak detection points.
// Wire format is numeric: 0 = Clear, 1 = Faulting (integer or float).
type FaultValue int

const (
	// FaultClear means no leak / sensor OK.
	FaultClear FaultValue = 0
	// FaultFaulting means leak detected / sensor fault.
	FaultFaulting FaultValue = 1
)

// String returns the domain name of the value.
func (v FaultValue) String() string {
	switch v {
	case FaultClear:
		return "Clear"
	case FaultFaulting:
		return "Faulting"
	default:
		return fmt.Sprintf("FaultValue(%d)", int(v))
	}
}

// UnmarshalJSON decodes a fault value from its numeric wire form.
// JSON parsers may deliver 0/1 as integers or as 0.0/1.0 floats;
// any other number is a decode error.
func (v *FaultValue) UnmarshalJSON(data []byte) error {
	var raw float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid binary value: %w", err)
	}

	switch raw {
	case 0:
		*v = FaultClear
	case 1:
		*v = FaultFaulting
	default:
		return fmt.Errorf("invalid binary value: expected 0 or 1, got %v", raw)
	}

	return nil
}

// MarshalJSON encodes the fault value in its numeric wire form.
func (v FaultValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(v))
}

// ValueMessage is published on `{prefix}{pointPath}/Value` topics.
type ValueMessage struct {
	Value     FaultValue `json:"value"`
	Timestamp int64      `json:"timestamp"` // unix seconds
}

// PointMetadata is published on `{prefix}{pointPath}/Metadata` topics.
// It describes the physical measurement point and the rack it belongs to.
type PointMetadata struct {
	PointType  string `json:"pointType"`
	ObjectType string `json:"objectType"`
	RackName   string `json:"rackName"`
	RackID     string `json:"rackID"` // maps to racks.id in the inventory
}

// IsSupportedLeakType reports whether the point type is one of the leak
// detection kinds this service handles. Unsupported metadata is never cached.
func (m *PointMetadata) IsSupportedLeakType() bool {
	_, ok := ParseLeakPointType(m.PointType)
	return ok
}

// LeakPointType returns the leak point type for this metadata, if supported.
func (m *PointMetadata) LeakPointType() (LeakPointType, bool) {
	return ParseLeakPointType(m.PointType)
}

// Message is a typed inbound event-bus message: exactly one of Metadata or
// Value is set, according to the topic suffix.
type Message struct {
	Topic    string
	Metadata *PointMetadata
	Value    *ValueMessage
}
