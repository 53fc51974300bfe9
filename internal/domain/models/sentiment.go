package models

import "time"

// Impact buckets how quickly a sentiment reading is expected to matter.
type Impact string

const (
	ImpactImmediate  Impact = "immediate"
	ImpactShortTerm  Impact = "short-term"
	ImpactLongTerm   Impact = "long-term"
	ImpactNegligible Impact = "negligible"
)

// SentimentSignal is one classified news item. Score is in [-1, 1] and
// Confidence in [0, 1]. ContentHash identifies the source text for caching.
type SentimentSignal struct {
	Timestamp   time.Time `json:"timestamp"`
	Ticker      string    `json:"ticker"`
	Source      string    `json:"source"`
	Score       float64   `json:"sentiment_score"`
	Confidence  float64   `json:"confidence"`
	KeyTopics   []string  `json:"key_topics"`
	Impact      Impact    `json:"market_impact"`
	Reasoning   string    `json:"reasoning"`
	ContentHash string    `json:"content_hash"`
}

// TickerSentiment is the confidence-weighted aggregate over a ticker's
// recent news. A ticker with no news has zero score and confidence and
// negligible impact.
type TickerSentiment struct {
	Ticker     string  `json:"ticker"`
	Score      float64 `json:"sentiment_score"`
	Confidence float64 `json:"sentiment_confidence"`
	Impact     Impact  `json:"sentiment_impact"`
	NewsCount  int     `json:"news_count"`
}
