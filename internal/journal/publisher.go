package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleet-leak-consumer/internal/models"
	rediscommon "fleet-leak-consumer/internal/redis"
)

// Publisher appends committed fault transitions to a Redis stream so other
// fleet services can follow override changes without talking to the
// inventory API.
type Publisher struct {
	redisClient *rediscommon.Client
	stream      string
	logger      *zap.Logger
}

// NewPublisher creates a transition journal publisher.
func NewPublisher(redisClient *rediscommon.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		redisClient: redisClient,
		stream:      stream,
		logger:      logger,
	}
}

// RecordTransition publishes one committed transition to the stream.
func (p *Publisher) RecordTransition(ctx context.Context, event *models.LeakEvent) error {
	streamID, err := rediscommon.PublishJSONToStream(ctx, p.redisClient, p.stream, event)
	if err != nil {
		return fmt.Errorf("failed to publish transition to stream %s: %w", p.stream, err)
	}

	p.logger.Debug("Published transition to journal",
		zap.String("stream", p.stream),
		zap.String("stream_id", streamID),
		zap.String("point_path", event.PointPath),
		zap.String("action", event.Action),
	)

	return nil
}
