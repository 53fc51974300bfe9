package models

import "time"

// PredictionRecord is the final persisted artifact for one ticker in one
// cycle: screening, signal, sentiment, and heuristic price targets combined.
// Append-only; never updated after the write.
type PredictionRecord struct {
	Ticker       string    `json:"ticker"`
	Timestamp    time.Time `json:"timestamp"`
	CurrentPrice float64   `json:"current_price"`

	SignalType Direction `json:"signal_type"`
	Confidence float64   `json:"confidence"`
	Reasons    []string  `json:"primary_reasons"`

	ScreeningScore float64 `json:"screening_score"`
	Sector         string  `json:"sector"`

	PredictedPrice1H float64 `json:"predicted_price_1h"`
	PredictedPrice1D float64 `json:"predicted_price_1d"`
	PredictedPrice1W float64 `json:"predicted_price_1w"`

	Volume            int64   `json:"volume"`
	RSI               float64 `json:"rsi"`
	MACD              float64 `json:"macd"`
	BollingerPosition float64 `json:"bollinger_position"`

	SentimentScore      float64 `json:"sentiment_score"`
	SentimentConfidence float64 `json:"sentiment_confidence"`
	SentimentImpact     Impact  `json:"sentiment_impact"`
	NewsCount           int     `json:"news_count"`
}
