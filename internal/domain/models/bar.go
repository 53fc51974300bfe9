package models

import "time"

// Bar is one OHLCV observation. Immutable once ingested; sequences are
// ordered oldest first.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Quote is a realtime last-price observation from the market stream.
type Quote struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64 // unix ms
}

// Fundamentals is the per-ticker fundamental snapshot used by screening.
// Zero values are the documented defaults when the source fails.
type Fundamentals struct {
	Name      string
	Sector    string
	Industry  string
	MarketCap float64
	AvgVolume float64
	Beta      float64
	PERatio   float64
}

// NewsItem is one piece of news text for sentiment analysis.
type NewsItem struct {
	Ticker      string
	Title       string
	Summary     string
	Source      string
	URL         string
	PublishedAt time.Time
}

// Content returns the text submitted to the sentiment classifier.
func (n NewsItem) Content() string {
	if n.Summary == "" {
		return n.Title
	}
	return n.Title + " " + n.Summary
}
