package models

import "time"

// HeikinAshiBar is a smoothed candle derived from a Bar and the previous
// HeikinAshiBar. Invariant: Low <= min(Open, Close) <= max(Open, Close) <= High.
type HeikinAshiBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Bullish reports whether the derived close is above the derived open.
func (b HeikinAshiBar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the derived close is below the derived open.
func (b HeikinAshiBar) Bearish() bool { return b.Close < b.Open }

// BodySize is the absolute open-to-close distance.
func (b HeikinAshiBar) BodySize() float64 {
	if b.Close > b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// CandleClass labels one Heikin Ashi bar and tracks the running streak.
// TrendStrength is positive during bullish streaks and negative during
// bearish ones; magnitude equals the current streak length.
type CandleClass struct {
	Bullish       bool
	Bearish       bool
	StrongBull    bool
	StrongBear    bool
	Hammer        bool
	ShootingStar  bool
	Doji          bool
	TrendStrength int
}
