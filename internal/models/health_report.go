package models

import "time"

// Health alert classifications understood by the inventory API.
const (
	ClassificationPreventAllocations = "PreventAllocations"
	ClassificationSensorCritical     = "SensorCritical"
	ClassificationHardware           = "Hardware"
)

// HealthAlert is one alert inside a health report.
type HealthAlert struct {
	ID              string    `json:"id"`
	Target          string    `json:"target"` // rack id
	InAlertSince    time.Time `json:"inAlertSince"`
	Message         string    `json:"message"`
	Classifications []string  `json:"classifications"`
}

// HealthReport is the rack health override artifact sent to the inventory API.
// Source attributes the override to this service so removal only touches
// overrides it created.
type HealthReport struct {
	Source     string        `json:"source"`
	ObservedAt time.Time     `json:"observedAt"`
	Successes  []string      `json:"successes"`
	Alerts     []HealthAlert `json:"alerts"`
}
