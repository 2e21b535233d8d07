package indexer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"liquidation-radar/internal/domain"
)

// EventPublisher pushes stored liquidation records to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, r *domain.LiquidationRecord) error
	Close() error
}

// KafkaConfig holds Kafka connection configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher implements EventPublisher using Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a new Kafka publisher.
func NewKafkaPublisher(config KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // Same collateral asset lands on the same partition
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaPublisher{writer: writer}
}

// Publish sends a liquidation record to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, r *domain.LiquidationRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.CollateralAsset),
		Value: data,
		Time:  time.Now(),
	})
}

// Close closes the publisher.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
