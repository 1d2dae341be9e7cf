package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is the envelope published to kafka. Payload carries the event-specific
// body as JSON.
type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	TenantID  string          `json:"tenant_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher publishes events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// PublisherConfig kafka producer configuration
type PublisherConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	RequiredAcks sarama.RequiredAcks
	Compression  sarama.CompressionCodec
}

// DefaultPublisherConfig returns a config suitable for local development.
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "tracktok.alerts",
		RetryMax:     3,
		RequiredAcks: sarama.WaitForLocal,
		Compression:  sarama.CompressionSnappy,
	}
}

// KafkaPublisher publishes events through a sarama sync producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *PublisherConfig
	logger   *zap.Logger
}

// NewKafkaPublisher creates a kafka publisher.
func NewKafkaPublisher(config *PublisherConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.Return.Errors = true
	kafkaConfig.Producer.RequiredAcks = config.RequiredAcks
	kafkaConfig.Producer.Compression = config.Compression
	kafkaConfig.Producer.Retry.Max = config.RetryMax
	kafkaConfig.Version = sarama.V3_6_0_0

	producer, err := sarama.NewSyncProducer(config.Brokers, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		config:   config,
		logger:   logger,
	}, nil
}

// Publish sends the event to the configured topic, keyed by tenant so all of
// one tenant's events stay ordered on a single partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(event.TenantID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("tenant_id"), Value: []byte(event.TenantID)},
		},
		Timestamp: event.Timestamp,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.EventType),
		zap.String("tenant_id", event.TenantID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close shuts the producer down, flushing buffered messages.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
