package service

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// ClassifyContext carries market context for a sentiment classification call.
type ClassifyContext struct {
	Ticker           string
	Sector           string
	MarketConditions string
	VolatilityRegime string
	Source           string
	Timestamp        time.Time
}

// Classifier maps free text to a structured sentiment signal. Implementations
// may call out to an external model service; callers must tolerate errors by
// degrading to a local fallback.
type Classifier interface {
	Classify(ctx context.Context, text string, cc ClassifyContext) (models.SentimentSignal, error)
}
