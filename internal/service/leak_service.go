package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleet-leak-consumer/internal/cache"
	"fleet-leak-consumer/internal/config"
	"fleet-leak-consumer/internal/consumer"
	"fleet-leak-consumer/internal/database"
	"fleet-leak-consumer/internal/journal"
	mqttcommon "fleet-leak-consumer/internal/mqtt"
	"fleet-leak-consumer/internal/processor"
	rediscommon "fleet-leak-consumer/internal/redis"
	"fleet-leak-consumer/internal/repository"
)

// LeakService wires the consumer, caches, processor and sinks together.
type LeakService struct {
	config      *config.Config
	logger      *zap.Logger
	mqttClient  *mqttcommon.Client
	redisClient *rediscommon.Client
	db          *sql.DB

	metadataCache *cache.MetadataCache
	stateCache    *cache.StateCache
	eventConsumer *consumer.EventConsumer
	processor     *processor.Processor
}

// NewLeakService creates the leak consumer service and connects its
// external dependencies.
func NewLeakService(cfg *config.Config, logger *zap.Logger) (*LeakService, error) {
	// 1. Connect to the MQTT event bus
	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	// 2. Connect to Redis when the transition journal is enabled
	var redisClient *rediscommon.Client
	if cfg.Journal.Enabled {
		redisClient = rediscommon.NewClient(&cfg.Redis)
		if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
			mqttClient.Disconnect()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
	}

	// 3. Connect to PostgreSQL when the audit log is enabled
	var db *sql.DB
	if cfg.Audit.Enabled {
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			if redisClient != nil {
				_ = rediscommon.Close(redisClient)
			}
			mqttClient.Disconnect()
			return nil, err
		}
	}

	// 4. Create the correlation caches
	metadataCache := cache.NewMetadataCache(cfg.Cache.MetadataTTL, cache.SystemClock)
	stateCache := cache.NewStateCache(cfg.Cache.StateTTL, cache.SystemClock)

	// 5. Create the health report sink
	var sink processor.HealthReportSink
	if cfg.InventoryAPI.URL != "" {
		sink = NewInventoryClient(cfg.InventoryAPI.URL, cfg.InventoryAPI.Timeout, logger)
	} else {
		logger.Warn("Inventory API URL not configured, health reports go to the console sink")
		sink = NewConsoleSink(logger)
	}

	// 6. Create the transition recorders
	var recorders []processor.TransitionRecorder
	if redisClient != nil {
		recorders = append(recorders, journal.NewPublisher(redisClient, cfg.Journal.Stream, logger))
	}
	if db != nil {
		recorders = append(recorders, repository.NewLeakEventsRepository(db, logger))
	}

	// 7. Create the processor and the event consumer
	proc := processor.NewProcessor(
		cfg.MQTT.TopicPrefix,
		metadataCache,
		stateCache,
		sink,
		cache.SystemClock,
		logger,
		recorders...,
	)
	eventConsumer := consumer.NewEventConsumer(cfg, mqttClient, logger)

	return &LeakService{
		config:        cfg,
		logger:        logger,
		mqttClient:    mqttClient,
		redisClient:   redisClient,
		db:            db,
		metadataCache: metadataCache,
		stateCache:    stateCache,
		eventConsumer: eventConsumer,
		processor:     proc,
	}, nil
}

// Start subscribes to the event bus and processes messages until the
// context is cancelled. It blocks for the lifetime of the service.
func (s *LeakService) Start(ctx context.Context) error {
	s.logger.Info("Starting leak consumer service",
		zap.String("topic_prefix", s.config.MQTT.TopicPrefix),
		zap.Bool("journal_enabled", s.config.Journal.Enabled),
		zap.Bool("audit_enabled", s.config.Audit.Enabled),
	)

	if err := s.eventConsumer.Start(); err != nil {
		return fmt.Errorf("failed to start event consumer: %w", err)
	}

	go s.runEvictionSweep(ctx, s.config.Cache.SweepInterval)

	s.processor.Run(ctx, s.eventConsumer.Messages())
	return nil
}

// Stop disconnects from the event bus and closes external connections.
func (s *LeakService) Stop() error {
	s.logger.Info("Stopping leak consumer service")

	s.eventConsumer.Stop()
	s.mqttClient.Disconnect()

	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			s.logger.Error("Failed to close redis", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Failed to close database", zap.Error(err))
		}
	}

	return nil
}

// runEvictionSweep periodically removes expired entries from both caches so
// idle keys do not accumulate between lazy-expiry reads.
func (s *LeakService) runEvictionSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metadataEvicted := s.metadataCache.EvictExpired()
			stateEvicted := s.stateCache.EvictExpired()
			if metadataEvicted > 0 || stateEvicted > 0 {
				s.logger.Debug("Evicted expired cache entries",
					zap.Int("metadata", metadataEvicted),
					zap.Int("state", stateEvicted),
				)
			}
		}
	}
}
