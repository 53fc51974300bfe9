package projection

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

func trendingBars(n int, step float64) []models.Bar {
	bars := make([]models.Bar, n)
	price := 100.0
	for i := range bars {
		next := price + step
		hi, lo := math.Max(price, next), math.Min(price, next)
		bars[i] = models.Bar{
			Timestamp: time.Unix(int64(i)*86400, 0),
			Open:      price,
			High:      hi + 0.5,
			Low:       lo - 0.5,
			Close:     next,
			Volume:    1_000_000,
		}
		price = next
	}
	return bars
}

func computeSet(t *testing.T, bars []models.Bar) *indicators.Set {
	t.Helper()
	set, err := indicators.Compute(bars)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestTargetsWithinATRBound(t *testing.T) {
	set := computeSet(t, trendingBars(120, 0.8))
	price := set.Bars[len(set.Bars)-1].Close
	atr := set.Last(indicators.SeriesATR)
	lo, hi := price-3*atr, price+3*atr
	// Rounding can land exactly on the clamp edge, so allow a half cent.
	const eps = 0.005

	directions := []models.Direction{models.SignalBullish, models.SignalBearish, models.SignalNeutral}
	for seed := int64(0); seed < 200; seed++ {
		p := New(rand.New(rand.NewSource(seed)))
		for _, dir := range directions {
			targets := p.Project(set, dir, 90)
			for _, v := range []float64{targets.Price1H, targets.Price1D, targets.Price1W} {
				if v < lo-eps || v > hi+eps {
					t.Fatalf("seed %d dir %s: target %v outside [%v, %v]", seed, dir, v, lo, hi)
				}
			}
		}
	}
}

func TestBullishDriftIsPositiveOnAverage(t *testing.T) {
	set := computeSet(t, trendingBars(120, 0.8))
	price := set.Bars[len(set.Bars)-1].Close
	p := New(rand.New(rand.NewSource(1)))

	var sum float64
	const runs = 500
	for i := 0; i < runs; i++ {
		sum += p.Project(set, models.SignalBullish, 80).Price1W
	}
	if avg := sum / runs; avg <= price {
		t.Errorf("mean bullish 1w target %v not above price %v", avg, price)
	}
}

func TestBearishDriftIsNegativeOnAverage(t *testing.T) {
	set := computeSet(t, trendingBars(120, -0.8))
	price := set.Bars[len(set.Bars)-1].Close
	p := New(rand.New(rand.NewSource(2)))

	var sum float64
	const runs = 500
	for i := 0; i < runs; i++ {
		sum += p.Project(set, models.SignalBearish, 80).Price1W
	}
	if avg := sum / runs; avg >= price {
		t.Errorf("mean bearish 1w target %v not below price %v", avg, price)
	}
}

func TestDeterministicForFixedSeed(t *testing.T) {
	set := computeSet(t, trendingBars(120, 0.5))
	a := New(rand.New(rand.NewSource(7))).Project(set, models.SignalBullish, 65)
	b := New(rand.New(rand.NewSource(7))).Project(set, models.SignalBullish, 65)
	if a != b {
		t.Errorf("same seed produced different targets: %+v vs %+v", a, b)
	}
}

func TestTrendStrengthFromEMAOrdering(t *testing.T) {
	up := computeSet(t, trendingBars(120, 0.8))
	if got := trendStrength(up); got != 0.8 {
		t.Errorf("uptrend strength = %v, want 0.8", got)
	}
	down := computeSet(t, trendingBars(120, -0.8))
	if got := trendStrength(down); got != 0.2 {
		t.Errorf("downtrend strength = %v, want 0.2", got)
	}
	flat := computeSet(t, trendingBars(120, 0))
	if got := trendStrength(flat); got != 0.5 {
		t.Errorf("flat strength = %v, want 0.5", got)
	}
}
