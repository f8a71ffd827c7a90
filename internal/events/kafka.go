package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// kafkaPublisher writes checkout events to a single Kafka topic, keyed by
// user id so events for one user land on one partition in order.
type kafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a Publisher backed by a Kafka topic. The hash
// balancer partitions by message key, which is what keeps one user's events
// on one partition.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 5 * time.Second,
	}

	logger = logger.With().Str("component", "kafka-publisher").Logger()
	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka publisher initialised")

	return &kafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event CheckoutEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish checkout event: %w", err)
	}

	p.logger.Debug().
		Str("type", event.Type).
		Str("user_id", event.UserID).
		Str("order_id", event.OrderID).
		Msg("checkout event published")

	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
