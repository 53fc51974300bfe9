package projection

import (
	"math"
	"math/rand"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
	"StockPulse/pkg/util"
)

// Targets are the heuristic price projections for the three horizons.
// These are confidence-weighted perturbations of the current price, not a
// fitted forecast; the formula is the contract.
type Targets struct {
	Price1H float64 `json:"predicted_price_1h"`
	Price1D float64 `json:"predicted_price_1d"`
	Price1W float64 `json:"predicted_price_1w"`
}

// Projector derives price targets from direction, confidence and volatility.
// The random source is injected so callers control determinism.
type Projector struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Projector { return &Projector{rng: rng} }

// Project computes all three horizons. Every output is clamped to within
// 3 ATR of the current price regardless of the drawn noise.
func (p *Projector) Project(set *indicators.Set, direction models.Direction, confidence float64) Targets {
	n := len(set.Bars)
	price := set.Bars[n-1].Close

	atr := set.Last(indicators.SeriesATR)
	if math.IsNaN(atr) || atr <= 0 {
		atr = price * 0.02
	}
	volatility := atr / price

	confFactor := confidence / 100.0
	trend := trendStrength(set)
	volFactor := util.Clamp(recentVolumeRatio(set.Bars), 0.5, 1.5)

	var drift [3]float64
	var sigma [3]float64
	switch direction {
	case models.SignalBullish:
		scale := confFactor * trend * volFactor
		drift = [3]float64{0.003 * scale, 0.015 * scale, 0.04 * scale}
		sigma = [3]float64{volatility * 0.1, volatility * 0.2, volatility * 0.3}
	case models.SignalBearish:
		scale := confFactor * (1 - trend) * volFactor
		drift = [3]float64{-0.003 * scale, -0.015 * scale, -0.04 * scale}
		sigma = [3]float64{volatility * 0.1, volatility * 0.2, volatility * 0.3}
	default:
		sigma = [3]float64{volatility * 0.05, volatility * 0.1, volatility * 0.15}
	}

	maxMove := 3 * atr
	project := func(i int) float64 {
		target := price * (1 + drift[i] + p.rng.NormFloat64()*sigma[i])
		return util.Round2(util.Clamp(target, price-maxMove, price+maxMove))
	}
	return Targets{
		Price1H: project(0),
		Price1D: project(1),
		Price1W: project(2),
	}
}

// trendStrength reads the EMA ordering: stacked up 0.8, stacked down 0.2,
// mixed or NaN 0.5.
func trendStrength(set *indicators.Set) float64 {
	e8 := set.Last(indicators.SeriesEMA8)
	e21 := set.Last(indicators.SeriesEMA21)
	e55 := set.Last(indicators.SeriesEMA55)
	switch {
	case e8 > e21 && e21 > e55:
		return 0.8
	case e8 < e21 && e21 < e55:
		return 0.2
	default:
		return 0.5
	}
}

// recentVolumeRatio compares the last 5 bars' mean volume to the last 20.
func recentVolumeRatio(bars []models.Bar) float64 {
	short := meanVolume(bars, 5)
	long := meanVolume(bars, 20)
	if long == 0 {
		return 1.0
	}
	return short / long
}

func meanVolume(bars []models.Bar, window int) float64 {
	if len(bars) < window {
		window = len(bars)
	}
	if window == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars[len(bars)-window:] {
		sum += b.Volume
	}
	return sum / float64(window)
}
