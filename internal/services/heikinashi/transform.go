package heikinashi

import "StockPulse/internal/domain/models"

// Transform derives Heikin Ashi bars from raw bars via the sequential
// recurrence: each derived open depends on the previous derived open/close,
// so input must run oldest-first and the whole window must be recomputed
// together. Results computed on different window lengths are not comparable
// bar-for-bar near the start; callers pass a long lookback and read the tail.
func Transform(bars []models.Bar) []models.HeikinAshiBar {
	if len(bars) == 0 {
		return nil
	}
	out := make([]models.HeikinAshiBar, len(bars))
	for i, b := range bars {
		ha := models.HeikinAshiBar{
			Timestamp: b.Timestamp,
			Close:     (b.Open + b.High + b.Low + b.Close) / 4,
			Volume:    b.Volume,
		}
		if i == 0 {
			ha.Open = (b.Open + b.Close) / 2
		} else {
			ha.Open = (out[i-1].Open + out[i-1].Close) / 2
		}
		ha.High = max3(ha.Open, ha.Close, b.High)
		ha.Low = min3(ha.Open, ha.Close, b.Low)
		out[i] = ha
	}
	return out
}

// Classify labels each Heikin Ashi bar and threads the streak counter.
// Thresholds are fixed: strong candles need body > 0.6x range with a small
// shadow on the leading side, hammers and shooting stars need a shadow more
// than twice the body, and a doji is any body under 0.1x range.
//
// The streak resets to 0 on a bar that is neither bullish nor bearish
// (an exact-doji close); continuation requires strict same-direction bars.
func Classify(bars []models.HeikinAshiBar) []models.CandleClass {
	out := make([]models.CandleClass, len(bars))
	for i, b := range bars {
		body := b.BodySize()
		total := b.High - b.Low
		upper := b.High - maxF(b.Open, b.Close)
		lower := minF(b.Open, b.Close) - b.Low

		c := models.CandleClass{
			Bullish:      b.Bullish(),
			Bearish:      b.Bearish(),
			Doji:         body < total*0.1,
			Hammer:       lower > body*2 && upper < body*0.5,
			ShootingStar: upper > body*2 && lower < body*0.5,
		}
		c.StrongBull = c.Bullish && body > total*0.6 && upper < body*0.3
		c.StrongBear = c.Bearish && body > total*0.6 && lower < body*0.3

		switch {
		case c.Bullish:
			if i > 0 && out[i-1].Bullish {
				c.TrendStrength = out[i-1].TrendStrength + 1
			} else {
				c.TrendStrength = 1
			}
		case c.Bearish:
			if i > 0 && out[i-1].Bearish {
				c.TrendStrength = out[i-1].TrendStrength - 1
			} else {
				c.TrendStrength = -1
			}
		}
		out[i] = c
	}
	return out
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
