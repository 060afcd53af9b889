package models

import "time"

// Leak event actions recorded when a transition is committed.
const (
	LeakEventActionInsert = "insert" // health override inserted (value went Faulting)
	LeakEventActionRemove = "remove" // health override removed (value went Clear)
)

// LeakEvent is the record of one committed state transition: a downstream
// call that succeeded and whose value was stored as the new baseline.
type LeakEvent struct {
	EventID     string    `json:"event_id"`
	PointPath   string    `json:"point_path"`
	PointType   string    `json:"point_type"`
	RackID      string    `json:"rack_id"`
	RackName    string    `json:"rack_name"`
	Value       string    `json:"value"`  // "Clear" or "Faulting"
	Action      string    `json:"action"` // "insert" or "remove"
	TriggeredAt time.Time `json:"triggered_at"`
	CreatedAt   time.Time `json:"created_at"`
}
