package models

import "time"

// ScoreComponents break the composite screening score into its sub-scores.
type ScoreComponents struct {
	EMAStack    int `json:"ema_stack"`
	Momentum    int `json:"momentum"`
	Volume      int `json:"volume"`
	Fundamental int `json:"fundamental"`
	Technical   int `json:"technical"`
}

// Total is the composite score. Always within [0, 100].
func (c ScoreComponents) Total() int {
	return c.EMAStack + c.Momentum + c.Volume + c.Fundamental + c.Technical
}

// ScreeningResult is one ticker's screening outcome for one run.
// OverallPass is the AND of the four gates and is deliberately independent
// of the score: a high score with one failed gate does not pass, and a
// marginal score with all gates passing does.
type ScreeningResult struct {
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name"`
	Sector       string          `json:"sector"`
	Industry     string          `json:"industry"`
	CurrentPrice float64         `json:"current_price"`
	MarketCap    float64         `json:"market_cap"`
	AvgVolume    float64         `json:"avg_volume"`
	Score        int             `json:"screening_score"`
	Components   ScoreComponents `json:"score_components"`

	PassesEMAStack    bool `json:"passes_ema_stack"`
	PassesMomentum    bool `json:"passes_momentum"`
	PassesVolume      bool `json:"passes_volume"`
	PassesFundamental bool `json:"passes_fundamental"`
	OverallPass       bool `json:"overall_pass"`

	EMA8        float64   `json:"ema_8"`
	EMA13       float64   `json:"ema_13"`
	EMA21       float64   `json:"ema_21"`
	EMA34       float64   `json:"ema_34"`
	EMA55       float64   `json:"ema_55"`
	EMA89       float64   `json:"ema_89"`
	ADX         float64   `json:"adx"`
	StochK      float64   `json:"stoch_k"`
	RSI         float64   `json:"rsi"`
	ATR         float64   `json:"atr"`
	VolumeRatio float64   `json:"volume_ratio"`
	ScreenedAt  time.Time `json:"screened_at"`
}
