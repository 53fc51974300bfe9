package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/logger"
)

// PredictionsConsumer drains the predictions topic into the store when the
// kafka backend is enabled. Implements the kafka MessageHandler contract.
type PredictionsConsumer struct {
	topic string
	store repository.PredictionStore
	log   *logger.Logger
}

func NewPredictionsConsumer(topic string, store repository.PredictionStore, log *logger.Logger) *PredictionsConsumer {
	return &PredictionsConsumer{topic: topic, store: store, log: log}
}

func (c *PredictionsConsumer) Topic() string { return c.topic }

// Handle decodes one record and appends it to the store. Malformed payloads
// are dropped rather than retried; they will never decode.
func (c *PredictionsConsumer) Handle(ctx context.Context, data []byte) error {
	var rec models.PredictionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		c.log.Warn("dropping malformed prediction message", logger.Error(err))
		return nil
	}
	if rec.Ticker == "" {
		c.log.Warn("dropping prediction message without ticker")
		return nil
	}
	if err := c.store.Append(ctx, &rec); err != nil {
		return fmt.Errorf("store prediction for %s: %w", rec.Ticker, err)
	}
	c.log.Debug("consumed prediction",
		logger.String("ticker", rec.Ticker),
		logger.String("signal", string(rec.SignalType)))
	return nil
}
