package notifications

import (
	"context"
	"fmt"
	"time"

	"studyhall/pkg/logger"

	"github.com/IBM/sarama"
)

// EventProducer publishes booking lifecycle events
type EventProducer interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka event producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-events",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// KafkaEventProducer publishes booking events to Kafka
type KafkaEventProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	logger   *logger.Logger
}

// NewKafkaEventProducer creates a new Kafka event producer
func NewKafkaEventProducer(config *KafkaProducerConfig, log *logger.Logger) (EventProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps per-booking ordering
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka event producer created", "topic", config.Topic, "brokers", config.Brokers)
	return &KafkaEventProducer{
		producer: producer,
		config:   config,
		logger:   log,
	}, nil
}

// Publish sends a single booking event to Kafka
func (p *KafkaEventProducer) Publish(ctx context.Context, event *BookingEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return err
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	p.logger.Info("Booking event published",
		"topic", p.config.Topic,
		"partition", partition,
		"offset", offset,
		"type", string(event.Type),
		"transaction_id", event.TransactionID.String(),
	)
	return nil
}

func (p *KafkaEventProducer) createHeaders(event *BookingEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("transaction_id"), Value: []byte(event.TransactionID.String())},
		{Key: []byte("producer"), Value: []byte("studyhall-payments")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}

	if event.BookingID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_id"),
			Value: []byte(event.BookingID.String()),
		})
	}

	if event.VenueID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("venue_id"),
			Value: []byte(event.VenueID.String()),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (p *KafkaEventProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NoopProducer drops events. Used when Kafka is disabled; publishing is
// best-effort and never blocks payment finalization.
type NoopProducer struct{}

func NewNoopProducer() EventProducer {
	return &NoopProducer{}
}

func (n *NoopProducer) Publish(ctx context.Context, event *BookingEvent) error {
	return nil
}

func (n *NoopProducer) Close() error {
	return nil
}
