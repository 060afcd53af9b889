package processor

import (
	"fmt"
	"time"

	"fleet-leak-consumer/internal/models"
)

// HealthReportSource attributes health overrides to this service. The remove
// call is scoped by it so overrides from other sources stay untouched.
const HealthReportSource = "fleet-leak-consumer"

// BuildLeakAlertReport builds the health report for one leak alert
// transition. Exactly one alert is produced; reports are never batched.
func BuildLeakAlertReport(metadata *models.PointMetadata, leakType models.LeakPointType, now time.Time) *models.HealthReport {
	alert := models.HealthAlert{
		ID:           leakType.AlertID(),
		Target:       metadata.RackID,
		InAlertSince: now,
		Message: fmt.Sprintf("%s on rack %s (%s)",
			leakType.Description(),
			metadata.RackName,
			metadata.RackID,
		),
		Classifications: []string{
			models.ClassificationPreventAllocations,
			models.ClassificationSensorCritical,
			models.ClassificationHardware,
		},
	}

	return &models.HealthReport{
		Source:     HealthReportSource,
		ObservedAt: now,
		Successes:  []string{},
		Alerts:     []models.HealthAlert{alert},
	}
}
