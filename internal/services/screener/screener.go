package screener

import (
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

// Scorer combines the latest indicator values with a fundamentals snapshot
// into a composite score and four independent pass gates. OverallPass is the
// AND of the gates and does not depend on the score; callers filter on one or
// the other. NaN indicator values fail the gate they belong to.
type Scorer struct{}

func New() *Scorer { return &Scorer{} }

// Screen scores one ticker from its computed indicators and fundamentals.
func (s *Scorer) Screen(ticker string, set *indicators.Set, f models.Fundamentals) models.ScreeningResult {
	n := len(set.Bars)
	r := models.ScreeningResult{
		Ticker:       ticker,
		Name:         f.Name,
		Sector:       f.Sector,
		Industry:     f.Industry,
		CurrentPrice: set.Bars[n-1].Close,
		MarketCap:    f.MarketCap,
		AvgVolume:    f.AvgVolume,
		EMA8:         set.Last(indicators.SeriesEMA8),
		EMA13:        set.Last(indicators.SeriesEMA13),
		EMA21:        set.Last(indicators.SeriesEMA21),
		EMA34:        set.Last(indicators.SeriesEMA34),
		EMA55:        set.Last(indicators.SeriesEMA55),
		EMA89:        set.Last(indicators.SeriesEMA89),
		ADX:          set.Last(indicators.SeriesADX),
		StochK:       set.Last(indicators.SeriesStochK),
		RSI:          set.Last(indicators.SeriesRSI),
		ATR:          set.Last(indicators.SeriesATR),
		VolumeRatio:  set.Last(indicators.SeriesVolRatio),
		ScreenedAt:   time.Now().UTC(),
	}

	r.PassesEMAStack = emaStacked(r)
	r.PassesMomentum = gt(r.ADX, 20) && lt(r.StochK, 40) && between(r.RSI, 30, 70)
	r.PassesVolume = gt(r.VolumeRatio, 1.0)
	r.PassesFundamental = f.MarketCap > 100_000_000_000 && f.AvgVolume > 1_000_000
	r.OverallPass = r.PassesEMAStack && r.PassesMomentum && r.PassesVolume && r.PassesFundamental

	r.Components = s.scoreComponents(r, f)
	r.Score = r.Components.Total()
	return r
}

// scoreComponents awards each sub-score independently of the gates.
func (s *Scorer) scoreComponents(r models.ScreeningResult, f models.Fundamentals) models.ScoreComponents {
	var c models.ScoreComponents

	if emaStacked(r) {
		c.EMAStack = 30
	}

	if gt(r.ADX, 20) {
		c.Momentum += 10
	}
	if lt(r.StochK, 40) {
		c.Momentum += 8
	}
	if between(r.RSI, 30, 70) {
		c.Momentum += 7
	}

	switch {
	case gt(r.VolumeRatio, 1.5):
		c.Volume = 15
	case gt(r.VolumeRatio, 1.0):
		c.Volume = 10
	}

	if f.MarketCap > 100_000_000_000 {
		c.Fundamental += 10
	}
	if f.AvgVolume > 1_000_000 {
		c.Fundamental += 5
	}

	if between(r.RSI, 40, 60) {
		c.Technical += 5
	}
	if gt(r.ADX, 30) {
		c.Technical += 5
	}
	return c
}

// emaStacked reports the strict bullish ribbon 8 > 13 > 21 > 34 > 55 > 89.
// Any NaN in the ribbon fails the check.
func emaStacked(r models.ScreeningResult) bool {
	return gt(r.EMA8, r.EMA13) && gt(r.EMA13, r.EMA21) && gt(r.EMA21, r.EMA34) &&
		gt(r.EMA34, r.EMA55) && gt(r.EMA55, r.EMA89)
}

func gt(v, bound float64) bool { return !math.IsNaN(v) && v > bound }

func lt(v, bound float64) bool { return !math.IsNaN(v) && v < bound }

func between(v, lo, hi float64) bool { return !math.IsNaN(v) && v >= lo && v <= hi }
