package processor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet-leak-consumer/internal/cache"
	"fleet-leak-consumer/internal/models"
)

// HealthReportSink submits rack health overrides to the inventory API.
// Implementations must be safe for concurrent calls.
type HealthReportSink interface {
	InsertRackHealthReport(ctx context.Context, rackID string, report *models.HealthReport) error
	RemoveRackHealthReport(ctx context.Context, rackID string) error
}

// TransitionRecorder receives committed transitions for journaling or audit.
// Recording is best-effort: failures are logged and never affect processing.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, event *models.LeakEvent) error
}

// Processor correlates point metadata and point values per point path and
// reconciles fault transitions with the inventory API.
//
// The inbound stream is drained strictly sequentially: one message is fully
// resolved, including any downstream call, before the next is taken. The
// downstream call's latency is the natural backpressure against the event
// bus. There is no re-drive timer after a downstream failure; recovery rides
// on the next value message for the path.
type Processor struct {
	topicPrefix   string
	metadataCache *cache.MetadataCache
	stateCache    *cache.StateCache
	sink          HealthReportSink
	recorders     []TransitionRecorder
	clock         cache.Clock
	logger        *zap.Logger
}

// NewProcessor creates a processor. Recorders are optional.
func NewProcessor(
	topicPrefix string,
	metadataCache *cache.MetadataCache,
	stateCache *cache.StateCache,
	sink HealthReportSink,
	clock cache.Clock,
	logger *zap.Logger,
	recorders ...TransitionRecorder,
) *Processor {
	if clock == nil {
		clock = cache.SystemClock
	}
	return &Processor{
		topicPrefix:   topicPrefix,
		metadataCache: metadataCache,
		stateCache:    stateCache,
		sink:          sink,
		recorders:     recorders,
		clock:         clock,
		logger:        logger,
	}
}

// Run processes messages until the channel closes (graceful shutdown) or the
// context is cancelled.
func (p *Processor) Run(ctx context.Context, messages <-chan models.Message) {
	p.logger.Info("Processor started",
		zap.String("topic_prefix", p.topicPrefix),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Processor stopped", zap.String("reason", "context cancelled"))
			return
		case msg, ok := <-messages:
			if !ok {
				p.logger.Info("Processor stopped", zap.String("reason", "message stream closed"))
				return
			}

			switch {
			case msg.Metadata != nil:
				p.handleMetadata(msg.Topic, msg.Metadata)
			case msg.Value != nil:
				p.handleValue(ctx, msg.Topic, msg.Value)
			}
		}
	}
}

// handleMetadata caches metadata for supported leak points.
func (p *Processor) handleMetadata(topic string, metadata *models.PointMetadata) {
	if !metadata.IsSupportedLeakType() {
		p.logger.Debug("Ignoring unsupported point type",
			zap.String("topic", topic),
			zap.String("point_type", metadata.PointType),
		)
		return
	}

	path, ok := ExtractPointPath(topic, p.topicPrefix)
	if !ok {
		p.logger.Warn("Could not extract point path from metadata topic",
			zap.String("topic", topic),
		)
		return
	}

	p.metadataCache.Put(path, *metadata)
	p.logger.Debug("Cached point metadata",
		zap.String("point_path", path),
		zap.String("point_type", metadata.PointType),
		zap.String("rack_id", metadata.RackID),
	)
}

// handleValue correlates a value message against cached metadata and drives
// the serialized conditional update on the state cache.
func (p *Processor) handleValue(ctx context.Context, topic string, msg *models.ValueMessage) {
	path, ok := ExtractPointPath(topic, p.topicPrefix)
	if !ok {
		p.logger.Warn("Could not extract point path from value topic",
			zap.String("topic", topic),
		)
		return
	}

	// Telemetry arriving before metadata (or after metadata expired) is the
	// normal race, not an error: the next metadata refresh re-correlates.
	metadata, ok := p.metadataCache.Get(path)
	if !ok {
		p.logger.Debug("No metadata cached for point, skipping",
			zap.String("point_path", path),
		)
		return
	}

	leakType, ok := metadata.LeakPointType()
	if !ok {
		// Metadata schema drift: the cached point type no longer maps
		p.logger.Warn("Unsupported leak type in cached metadata",
			zap.String("point_path", path),
			zap.String("point_type", metadata.PointType),
		)
		return
	}

	value := msg.Value

	err := p.stateCache.Update(path, func(current *models.FaultValue) (*models.FaultValue, error) {
		// Deduplicate unchanged values against the last reconciled state
		if current != nil && *current == value {
			p.logger.Debug("Deduplicating unchanged value",
				zap.String("point_path", path),
				zap.String("value", value.String()),
			)
			return nil, nil
		}

		if err := p.reconcile(ctx, path, metadata, leakType, value); err != nil {
			return nil, err
		}

		return &value, nil
	})
	if err != nil {
		// No state was committed, so the next value message for this path
		// re-attempts the same reconciliation.
		p.logger.Error("Failed to reconcile fault transition, will retry on next value",
			zap.String("point_path", path),
			zap.String("rack_id", metadata.RackID),
			zap.Error(err),
		)
	}
}

// reconcile performs the downstream call for one transition and records it.
// Called inside the state cache's per-key critical section.
func (p *Processor) reconcile(
	ctx context.Context,
	path string,
	metadata models.PointMetadata,
	leakType models.LeakPointType,
	value models.FaultValue,
) error {
	action := models.LeakEventActionRemove

	if value == models.FaultFaulting {
		action = models.LeakEventActionInsert
		p.logger.Info("Leak alert detected, inserting health override",
			zap.String("point_path", path),
			zap.String("point_type", metadata.PointType),
			zap.String("rack_id", metadata.RackID),
			zap.String("rack_name", metadata.RackName),
		)

		report := BuildLeakAlertReport(&metadata, leakType, p.clock.Now())
		if err := p.sink.InsertRackHealthReport(ctx, metadata.RackID, report); err != nil {
			return err
		}
	} else {
		p.logger.Info("Leak cleared, removing health override",
			zap.String("point_path", path),
			zap.String("point_type", metadata.PointType),
			zap.String("rack_id", metadata.RackID),
			zap.String("rack_name", metadata.RackName),
		)

		if err := p.sink.RemoveRackHealthReport(ctx, metadata.RackID); err != nil {
			return err
		}
	}

	p.record(ctx, path, metadata, value, action)
	return nil
}

// record forwards one committed transition to the configured recorders.
func (p *Processor) record(ctx context.Context, path string, metadata models.PointMetadata, value models.FaultValue, action string) {
	if len(p.recorders) == 0 {
		return
	}

	now := p.clock.Now()
	event := &models.LeakEvent{
		EventID:     uuid.New().String(),
		PointPath:   path,
		PointType:   metadata.PointType,
		RackID:      metadata.RackID,
		RackName:    metadata.RackName,
		Value:       value.String(),
		Action:      action,
		TriggeredAt: now,
		CreatedAt:   now,
	}

	for _, recorder := range p.recorders {
		if err := recorder.RecordTransition(ctx, event); err != nil {
			p.logger.Warn("Failed to record transition",
				zap.String("point_path", path),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}
}

// ExtractPointPath strips the configured prefix and the /Metadata or /Value
// suffix from a topic. Topics carrying any other suffix, or a different
// prefix, yield no path.
func ExtractPointPath(topic, prefix string) (string, bool) {
	var trimmed string
	switch {
	case strings.HasSuffix(topic, metadataTopicSuffix):
		trimmed = strings.TrimSuffix(topic, metadataTopicSuffix)
	case strings.HasSuffix(topic, valueTopicSuffix):
		trimmed = strings.TrimSuffix(topic, valueTopicSuffix)
	default:
		return "", false
	}

	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}

	return strings.TrimPrefix(trimmed, prefix), true
}

const (
	metadataTopicSuffix = "/Metadata"
	valueTopicSuffix    = "/Value"
)
