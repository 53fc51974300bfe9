package models

import "time"

// Direction is the primary signal label.
type Direction string

const (
	SignalBullish Direction = "BULLISH"
	SignalBearish Direction = "BEARISH"
	SignalNeutral Direction = "NEUTRAL"
)

// Strength buckets a confidence score by fixed thresholds.
type Strength string

const (
	StrengthVeryStrong Strength = "VERY_STRONG" // >= 80
	StrengthStrong     Strength = "STRONG"      // >= 60
	StrengthModerate   Strength = "MODERATE"    // >= 40
	StrengthWeak       Strength = "WEAK"        // >= 20
	StrengthVeryWeak   Strength = "VERY_WEAK"
)

// CaseAnalysis is the outcome of evaluating one side (bullish or bearish)
// independently of the other.
type CaseAnalysis struct {
	Triggered  bool     `json:"triggered"`
	Confidence int      `json:"confidence"`
	Strength   Strength `json:"strength"`
	Reasons    []string `json:"reasons"`
}

// SignalTechnicals carries the raw indicator values the detector used.
type SignalTechnicals struct {
	CurrentPrice  float64 `json:"current_price"`
	EMA21         float64 `json:"ema_21"`
	ATR           float64 `json:"atr"`
	RSI           float64 `json:"rsi"`
	TrendStrength int     `json:"ha_trend_strength"`
	PriceDistance float64 `json:"price_distance_from_ema"`
	VolumeRatio   float64 `json:"volume_ratio"`
}

// SignalResult is one ticker's directional signal for one run. Confidence is
// clamped to [0, 100] after summation; the raw additive terms can exceed 100.
type SignalResult struct {
	Ticker     string           `json:"ticker"`
	Direction  Direction        `json:"primary_signal"`
	Confidence int              `json:"primary_confidence"`
	Strength   Strength         `json:"signal_strength"`
	Reasons    []string         `json:"primary_reasons"`
	Bullish    CaseAnalysis     `json:"bullish_analysis"`
	Bearish    CaseAnalysis     `json:"bearish_analysis"`
	Technicals SignalTechnicals `json:"technical_data"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
}
