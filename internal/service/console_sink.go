package service

import (
	"context"

	"go.uber.org/zap"

	"fleet-leak-consumer/internal/models"
	"fleet-leak-consumer/internal/processor"
)

// ConsoleSink logs health overrides instead of calling the inventory API.
// Used when no API URL is configured (local runs, debugging).
type ConsoleSink struct {
	logger *zap.Logger
}

// NewConsoleSink creates a console sink.
func NewConsoleSink(logger *zap.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger}
}

// InsertRackHealthReport logs the report that would have been inserted.
func (s *ConsoleSink) InsertRackHealthReport(_ context.Context, rackID string, report *models.HealthReport) error {
	s.logger.Info("Inserting rack health override",
		zap.String("rack_id", rackID),
		zap.Int("successes", len(report.Successes)),
		zap.Int("alerts", len(report.Alerts)),
	)
	for _, alert := range report.Alerts {
		s.logger.Warn("Rack health alert",
			zap.String("rack_id", rackID),
			zap.String("alert_id", alert.ID),
			zap.String("message", alert.Message),
		)
	}
	return nil
}

// RemoveRackHealthReport logs the removal that would have happened.
func (s *ConsoleSink) RemoveRackHealthReport(_ context.Context, rackID string) error {
	s.logger.Info("Removing rack health override",
		zap.String("rack_id", rackID),
		zap.String("source", processor.HealthReportSource),
	)
	return nil
}
