package repository

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
)

// ErrDataUnavailable marks a ticker with no bars or fundamentals this cycle.
// The ticker is skipped; the batch continues.
var ErrDataUnavailable = errors.New("market data unavailable")

// BarSource fetches historical OHLCV bars, oldest first.
type BarSource interface {
	Bars(ctx context.Context, ticker, period, interval string) ([]models.Bar, error)
}

// FundamentalsSource fetches a per-ticker fundamental snapshot. On failure it
// returns defaults rather than an error.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, ticker string) (models.Fundamentals, error)
}

// NewsSource fetches recent news items for a ticker.
type NewsSource interface {
	RecentNews(ctx context.Context, ticker string, hoursBack int) ([]models.NewsItem, error)
}

// PredictionStore persists prediction records and serves API reads.
// Appends are at-most-once: a failed write is logged and the cycle continues.
type PredictionStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, rec *models.PredictionRecord) error
	Latest(ctx context.Context, ticker string, limit int) ([]models.PredictionRecord, error)
	History(ctx context.Context, ticker string, since time.Time, limit int) ([]models.PredictionRecord, error)
	ActiveTickers(ctx context.Context, limit int) ([]string, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher publishes prediction records to a message backend.
type Publisher interface {
	Publish(ctx context.Context, rec *models.PredictionRecord) error
	Close() error
}

// MarketStream streams realtime quotes over a persistent connection.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics records operational metrics.
type Metrics interface {
	RecordPrediction(ticker, signal string)
	RecordCycle(seconds float64, analyzed, failed int)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
