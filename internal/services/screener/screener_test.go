package screener

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

func barsFromCloses(closes []float64, volume float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: time.Unix(int64(i)*86400, 0),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    volume,
		}
	}
	return bars
}

func ascendingBars(n int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return barsFromCloses(closes, 2_000_000)
}

func largeCap() models.Fundamentals {
	return models.Fundamentals{
		Name:      "Test Corp",
		Sector:    "Technology",
		MarketCap: 500_000_000_000,
		AvgVolume: 50_000_000,
	}
}

func TestScoreWithinBounds(t *testing.T) {
	scorer := New()
	inputs := [][]models.Bar{
		ascendingBars(120),
		barsFromCloses(make([]float64, 120), 1000), // zero closes, degenerate
		ascendingBars(10),                          // too short for most windows
	}
	for i, bars := range inputs {
		if bars[0].Close == 0 {
			for j := range bars {
				bars[j].Open, bars[j].High, bars[j].Low, bars[j].Close = 50, 50, 50, 50
			}
		}
		set, err := indicators.Compute(bars)
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		r := scorer.Screen("TEST", set, largeCap())
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("input %d: score %d out of [0,100]", i, r.Score)
		}
	}
}

func TestAscendingSeriesEMAStackComponent(t *testing.T) {
	set, err := indicators.Compute(ascendingBars(200))
	if err != nil {
		t.Fatal(err)
	}
	r := New().Screen("UP", set, largeCap())
	if !r.PassesEMAStack {
		t.Error("ascending series should pass the EMA stack gate")
	}
	if r.Components.EMAStack != 30 {
		t.Errorf("ema stack component = %d, want 30", r.Components.EMAStack)
	}
}

func TestOverallPassIndependentOfScore(t *testing.T) {
	// Ascending series with strong fundamentals scores well but the
	// stochastic sits pinned high, so the momentum gate fails.
	set, err := indicators.Compute(ascendingBars(200))
	if err != nil {
		t.Fatal(err)
	}
	r := New().Screen("UP", set, largeCap())
	if r.PassesMomentum {
		t.Skip("momentum gate unexpectedly passed; scenario needs a pinned stochastic")
	}
	if r.OverallPass {
		t.Errorf("overall pass must be false with a failed gate (score %d)", r.Score)
	}
}

func TestFundamentalGate(t *testing.T) {
	set, err := indicators.Compute(ascendingBars(200))
	if err != nil {
		t.Fatal(err)
	}
	small := models.Fundamentals{MarketCap: 1_000_000_000, AvgVolume: 500_000}
	r := New().Screen("SMALL", set, small)
	if r.PassesFundamental {
		t.Error("small cap with thin volume should fail the fundamental gate")
	}
	if r.Components.Fundamental != 0 {
		t.Errorf("fundamental component = %d, want 0", r.Components.Fundamental)
	}
	if r.OverallPass {
		t.Error("overall pass must be false when the fundamental gate fails")
	}
}

func TestShortHistoryFailsGatesWithoutPanic(t *testing.T) {
	set, err := indicators.Compute(ascendingBars(10))
	if err != nil {
		t.Fatal(err)
	}
	r := New().Screen("SHORT", set, largeCap())
	if r.PassesEMAStack || r.PassesMomentum {
		t.Error("NaN indicators must fail their gates")
	}
	if r.Components.EMAStack != 0 {
		t.Errorf("ema stack component = %d, want 0 on NaN ribbon", r.Components.EMAStack)
	}
}

func TestFlatSeriesFailsEMAStack(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 75
	}
	set, err := indicators.Compute(barsFromCloses(closes, 1_500_000))
	if err != nil {
		t.Fatal(err)
	}
	r := New().Screen("FLAT", set, largeCap())
	if r.PassesEMAStack {
		t.Error("equal EMAs are not a strict stack")
	}
	if r.Components.EMAStack != 0 {
		t.Errorf("ema stack component = %d, want 0", r.Components.EMAStack)
	}
}
