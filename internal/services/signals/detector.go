package signals

import (
	"fmt"
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/heikinashi"
	"StockPulse/internal/services/indicators"
	"StockPulse/pkg/util"
)

const (
	minBars          = 5
	triggerThreshold = 40
)

// Detector evaluates a bullish case and a bearish case independently over the
// latest Heikin Ashi bars and indicator values. Each case sums fixed point
// contributions and triggers at 40 or more. Confidence is clamped to [0, 100]
// after summation since the additive terms can exceed 100; the clamp is part
// of the contract, not an incidental cap.
type Detector struct{}

func New() *Detector { return &Detector{} }

// Detect runs both cases over the latest bars and resolves the primary
// direction. Fewer than 5 bars yields NEUTRAL with untriggered cases.
func (d *Detector) Detect(ticker string, set *indicators.Set) models.SignalResult {
	res := models.SignalResult{
		Ticker:     ticker,
		Direction:  models.SignalNeutral,
		Strength:   models.StrengthVeryWeak,
		AnalyzedAt: time.Now().UTC(),
	}
	if len(set.Bars) < minBars {
		res.Reasons = []string{"No clear signal detected"}
		return res
	}

	ha := heikinashi.Transform(set.Bars)
	classes := heikinashi.Classify(ha)
	n := len(ha)
	last, prev := ha[n-1], ha[n-2]
	lastClass, prevClass := classes[n-1], classes[n-2]

	price := set.Bars[n-1].Close
	ema21 := set.Last(indicators.SeriesEMA21)
	atr := set.Last(indicators.SeriesATR)
	rsi := set.Last(indicators.SeriesRSI)
	volRatio := set.Last(indicators.SeriesVolRatio)

	res.Technicals = models.SignalTechnicals{
		CurrentPrice:  util.Round2(price),
		EMA21:         util.Round2(ema21),
		ATR:           util.Round2(atr),
		RSI:           util.Round2(rsi),
		TrendStrength: lastClass.TrendStrength,
		PriceDistance: util.Round2(math.Abs(price - ema21)),
		VolumeRatio:   util.Round2(volRatio),
	}

	res.Bullish = bullishCase(last, prev, lastClass, prevClass, price, ema21, atr, rsi, volRatio)
	res.Bearish = bearishCase(last, prev, lastClass, prevClass, price, ema21, atr, rsi, volRatio)

	res.Direction, res.Confidence, res.Reasons = resolve(res.Bullish, res.Bearish)
	res.Strength = strengthBucket(res.Confidence)
	return res
}

// resolve picks the primary direction from the two case analyses. When both
// trigger the higher confidence wins; an exact tie resolves bullish because
// that side is evaluated first. Arbitrary, but fixed.
func resolve(bull, bear models.CaseAnalysis) (models.Direction, int, []string) {
	switch {
	case bull.Triggered && bear.Triggered:
		if bull.Confidence >= bear.Confidence {
			return models.SignalBullish, bull.Confidence, bull.Reasons
		}
		return models.SignalBearish, bear.Confidence, bear.Reasons
	case bull.Triggered:
		return models.SignalBullish, bull.Confidence, bull.Reasons
	case bear.Triggered:
		return models.SignalBearish, bear.Confidence, bear.Reasons
	default:
		return models.SignalNeutral, 0, []string{"No clear signal detected"}
	}
}

func bullishCase(last, prev models.HeikinAshiBar, lastClass, prevClass models.CandleClass,
	price, ema21, atr, rsi, volRatio float64) models.CaseAnalysis {

	confidence := 0
	var reasons []string

	if lastClass.StrongBull {
		reasons = append(reasons, "Strong bullish Heikin Ashi candle")
		confidence += 25
	} else if lastClass.Bullish && last.Close > prev.Close {
		reasons = append(reasons, "Bullish Heikin Ashi with higher close")
		confidence += 15
	}

	if lastClass.TrendStrength >= 2 {
		reasons = append(reasons, fmt.Sprintf("Consecutive bullish momentum (%d candles)", lastClass.TrendStrength))
		confidence += min(20, lastClass.TrendStrength*5)
	}

	switch {
	case rsi > 30 && rsi < 70:
		reasons = append(reasons, fmt.Sprintf("Healthy RSI level: %.1f", rsi))
		confidence += 15
	case rsi > 70:
		reasons = append(reasons, fmt.Sprintf("RSI overbought warning: %.1f", rsi))
		confidence -= 10
	case rsi < 30:
		reasons = append(reasons, fmt.Sprintf("RSI oversold opportunity: %.1f", rsi))
		confidence += 10
	}

	if dist := math.Abs(price - ema21); dist <= atr {
		reasons = append(reasons, "Price near EMA21 support")
		confidence += 15
	} else if price > ema21 {
		reasons = append(reasons, "Price above EMA21")
		confidence += 10
	}

	if volRatio > 1.2 {
		reasons = append(reasons, fmt.Sprintf("Volume confirmation: %.1fx", volRatio))
		confidence += 10
	}

	if lastClass.Hammer && price <= ema21+atr {
		reasons = append(reasons, "Hammer pattern near support")
		confidence += 20
	}

	if prevClass.Bearish && lastClass.Bullish && last.Close > prev.Close {
		reasons = append(reasons, "Potential trend reversal")
		confidence += 15
	}

	confidence = util.ClampInt(confidence, 0, 100)
	return models.CaseAnalysis{
		Triggered:  confidence >= triggerThreshold,
		Confidence: confidence,
		Strength:   strengthBucket(confidence),
		Reasons:    reasons,
	}
}

func bearishCase(last, prev models.HeikinAshiBar, lastClass, prevClass models.CandleClass,
	price, ema21, atr, rsi, volRatio float64) models.CaseAnalysis {

	confidence := 0
	var reasons []string

	if lastClass.StrongBear {
		reasons = append(reasons, "Strong bearish Heikin Ashi candle")
		confidence += 25
	} else if lastClass.Bearish && last.Close < prev.Close {
		reasons = append(reasons, "Bearish Heikin Ashi with lower close")
		confidence += 15
	}

	if lastClass.TrendStrength <= -2 {
		reasons = append(reasons, fmt.Sprintf("Consecutive bearish momentum (%d candles)", -lastClass.TrendStrength))
		confidence += min(20, -lastClass.TrendStrength*5)
	}

	switch {
	case rsi > 30 && rsi < 70:
		reasons = append(reasons, fmt.Sprintf("Neutral RSI level: %.1f", rsi))
		confidence += 10
	case rsi > 70:
		reasons = append(reasons, fmt.Sprintf("RSI overbought breakdown risk: %.1f", rsi))
		confidence += 20
	case rsi < 30:
		reasons = append(reasons, fmt.Sprintf("RSI oversold bounce risk: %.1f", rsi))
		confidence -= 10
	}

	if dist := math.Abs(price - ema21); dist <= atr {
		reasons = append(reasons, "Price near EMA21 resistance")
		confidence += 15
	} else if price < ema21 {
		reasons = append(reasons, "Price below EMA21")
		confidence += 10
	}

	if volRatio > 1.2 {
		reasons = append(reasons, fmt.Sprintf("Volume confirmation: %.1fx", volRatio))
		confidence += 10
	}

	if lastClass.ShootingStar && price >= ema21-atr {
		reasons = append(reasons, "Shooting star pattern near resistance")
		confidence += 20
	}

	if prevClass.Bullish && lastClass.Bearish && last.Close < prev.Close {
		reasons = append(reasons, "Potential trend reversal")
		confidence += 15
	}

	confidence = util.ClampInt(confidence, 0, 100)
	return models.CaseAnalysis{
		Triggered:  confidence >= triggerThreshold,
		Confidence: confidence,
		Strength:   strengthBucket(confidence),
		Reasons:    reasons,
	}
}

func strengthBucket(confidence int) models.Strength {
	switch {
	case confidence >= 80:
		return models.StrengthVeryStrong
	case confidence >= 60:
		return models.StrengthStrong
	case confidence >= 40:
		return models.StrengthModerate
	case confidence >= 20:
		return models.StrengthWeak
	default:
		return models.StrengthVeryWeak
	}
}
