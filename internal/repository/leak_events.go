package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"fleet-leak-consumer/internal/models"
)

// LeakEventsRepository persists committed fault transitions to the
// leak_events table, giving operators a durable audit log of override
// changes.
type LeakEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLeakEventsRepository creates a leak events repository.
func NewLeakEventsRepository(db *sql.DB, logger *zap.Logger) *LeakEventsRepository {
	return &LeakEventsRepository{
		db:     db,
		logger: logger,
	}
}

// RecordTransition inserts one committed transition.
func (r *LeakEventsRepository) RecordTransition(ctx context.Context, event *models.LeakEvent) error {
	if event.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if event.PointPath == "" {
		return fmt.Errorf("point_path is required")
	}
	if event.RackID == "" {
		return fmt.Errorf("rack_id is required")
	}

	query := `
		INSERT INTO leak_events (
			event_id,
			point_path,
			point_type,
			rack_id,
			rack_name,
			value,
			action,
			triggered_at,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.EventID,
		event.PointPath,
		event.PointType,
		event.RackID,
		event.RackName,
		event.Value,
		event.Action,
		event.TriggeredAt,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert leak event: %w", err)
	}

	r.logger.Debug("Recorded leak event",
		zap.String("event_id", event.EventID),
		zap.String("point_path", event.PointPath),
		zap.String("action", event.Action),
	)

	return nil
}

// GetRecentLeakEvents returns the most recent transitions for a rack,
// newest first. Used by operators when investigating an override.
func (r *LeakEventsRepository) GetRecentLeakEvents(ctx context.Context, rackID string, limit int) ([]models.LeakEvent, error) {
	if rackID == "" {
		return nil, fmt.Errorf("rack_id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			event_id,
			point_path,
			point_type,
			rack_id,
			rack_name,
			value,
			action,
			triggered_at,
			created_at
		FROM leak_events
		WHERE rack_id = $1
		ORDER BY triggered_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, rackID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leak events: %w", err)
	}
	defer rows.Close()

	var events []models.LeakEvent
	for rows.Next() {
		var event models.LeakEvent
		if err := rows.Scan(
			&event.EventID,
			&event.PointPath,
			&event.PointType,
			&event.RackID,
			&event.RackName,
			&event.Value,
			&event.Action,
			&event.TriggeredAt,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leak event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leak events: %w", err)
	}

	return events, nil
}
