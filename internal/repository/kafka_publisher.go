package repository

import (
	"context"
	"fmt"

	"StockPulse/internal/domain/models"
	pkgkafka "StockPulse/pkg/kafka"
)

// KafkaPublisher publishes prediction records to the predictions topic,
// keyed by ticker so one ticker's records stay ordered within a partition.
// Used when the persistence backend is kafka; a consumer drains the topic
// into ClickHouse.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, rec *models.PredictionRecord) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(rec.Ticker), rec); err != nil {
		return fmt.Errorf("publish prediction for %s: %w", rec.Ticker, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
