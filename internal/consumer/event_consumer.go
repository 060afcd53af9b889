package consumer

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fleet-leak-consumer/internal/config"
	"fleet-leak-consumer/internal/models"
	mqttcommon "fleet-leak-consumer/internal/mqtt"
)

// Topic suffixes published by the building management system.
const (
	metadataSuffix = "/Metadata"
	valueSuffix    = "/Value"
)

// EventConsumer subscribes to leak detection topics on the event bus and
// feeds decoded messages into a bounded processing queue. When the queue is
// full the newest message is dropped; a dropped metadata message just delays
// correlation and a dropped value message delays reconciliation until the
// next value arrives.
type EventConsumer struct {
	config     *config.Config
	mqttClient *mqttcommon.Client
	logger     *zap.Logger

	messages chan models.Message
	mu       sync.Mutex
	closed   bool
	dropped  uint64
}

// NewEventConsumer creates an event consumer.
func NewEventConsumer(cfg *config.Config, mqttClient *mqttcommon.Client, logger *zap.Logger) *EventConsumer {
	return &EventConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		logger:     logger,
		messages:   make(chan models.Message, cfg.MQTT.QueueCapacity),
	}
}

// Messages returns the queue of decoded inbound messages. The channel is
// closed by Stop; the processor treats that as graceful shutdown.
func (c *EventConsumer) Messages() <-chan models.Message {
	return c.messages
}

// Start subscribes to all topics under the configured prefix.
func (c *EventConsumer) Start() error {
	filter := c.config.MQTT.TopicPrefix + "#"
	if err := c.mqttClient.Subscribe(filter, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to leak topics: %w", err)
	}

	c.logger.Info("Event consumer started",
		zap.String("topic_filter", filter),
		zap.Int("queue_capacity", c.config.MQTT.QueueCapacity),
	)

	return nil
}

// Stop unsubscribes and closes the processing queue.
func (c *EventConsumer) Stop() {
	if err := c.mqttClient.Unsubscribe(c.config.MQTT.TopicPrefix + "#"); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.messages)
	}
	c.mu.Unlock()

	c.logger.Info("Event consumer stopped")
}

// handleMessage decodes one event-bus message and enqueues it.
func (c *EventConsumer) handleMessage(topic string, payload []byte) error {
	var msg models.Message

	switch {
	case strings.HasSuffix(topic, metadataSuffix):
		var metadata models.PointMetadata
		if err := json.Unmarshal(payload, &metadata); err != nil {
			return fmt.Errorf("failed to decode metadata message on %s: %w", topic, err)
		}
		msg = models.Message{Topic: topic, Metadata: &metadata}

	case strings.HasSuffix(topic, valueSuffix):
		var value models.ValueMessage
		if err := json.Unmarshal(payload, &value); err != nil {
			return fmt.Errorf("failed to decode value message on %s: %w", topic, err)
		}
		msg = models.Message{Topic: topic, Value: &value}

	default:
		// Other point traffic on the shared prefix is not ours
		c.logger.Debug("Ignoring message with unknown topic suffix",
			zap.String("topic", topic),
		)
		return nil
	}

	c.enqueue(msg)
	return nil
}

// enqueue adds the message to the queue, dropping it when the queue is full.
func (c *EventConsumer) enqueue(msg models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.messages <- msg:
	default:
		c.dropped++
		c.logger.Warn("Processing queue full, dropping message",
			zap.String("topic", msg.Topic),
			zap.Uint64("dropped_total", c.dropped),
		)
	}
}

// Dropped returns how many messages were dropped due to queue overflow.
func (c *EventConsumer) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
