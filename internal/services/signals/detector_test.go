package signals

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

func buildSet(t *testing.T, bars []models.Bar) *indicators.Set {
	t.Helper()
	set, err := indicators.Compute(bars)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func closesToBars(closes []float64, volume float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		hi, lo := open, open
		if c > hi {
			hi = c
		}
		if c < lo {
			lo = c
		}
		bars[i] = models.Bar{
			Timestamp: time.Unix(int64(i)*86400, 0),
			Open:      open,
			High:      hi * 1.002,
			Low:       lo * 0.998,
			Close:     c,
			Volume:    volume,
		}
	}
	return bars
}

func TestTooFewBarsIsNeutral(t *testing.T) {
	set := buildSet(t, closesToBars([]float64{100, 101, 102}, 1000))
	res := New().Detect("SHORT", set)
	if res.Direction != models.SignalNeutral {
		t.Errorf("direction = %s, want NEUTRAL", res.Direction)
	}
	if res.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", res.Confidence)
	}
	if res.Bullish.Triggered || res.Bearish.Triggered {
		t.Error("no case may trigger below the minimum bar count")
	}
}

func TestFlatSeriesNeutralBelowTrigger(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 50
	}
	set := buildSet(t, closesToBars(closes, 1000))
	res := New().Detect("FLAT", set)
	if res.Direction != models.SignalNeutral {
		t.Errorf("direction = %s, want NEUTRAL", res.Direction)
	}
	if res.Bullish.Confidence >= 40 || res.Bearish.Confidence >= 40 {
		t.Errorf("flat series case confidence too high: bull %d bear %d",
			res.Bullish.Confidence, res.Bearish.Confidence)
	}
	if len(res.Reasons) != 1 || res.Reasons[0] != "No clear signal detected" {
		t.Errorf("reasons = %v", res.Reasons)
	}
}

func TestConfidenceClampedAt100(t *testing.T) {
	// Steady uptrend with a volume spike on the last bar stacks most of the
	// bullish contributions: strong candles, long streak, near-EMA price,
	// volume confirmation.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 * (1 + 0.01*float64(i))
	}
	bars := closesToBars(closes, 1000)
	bars[len(bars)-1].Volume = 5000
	res := New().Detect("UP", buildSet(t, bars))
	if res.Confidence > 100 || res.Confidence < 0 {
		t.Fatalf("confidence %d out of [0,100]", res.Confidence)
	}
	if res.Bullish.Confidence > 100 {
		t.Fatalf("bullish case confidence %d exceeds clamp", res.Bullish.Confidence)
	}
	if res.Direction != models.SignalBullish {
		t.Errorf("direction = %s, want BULLISH", res.Direction)
	}
}

func TestDowntrendBearish(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 * (1 - 0.008*float64(i))
	}
	bars := closesToBars(closes, 1000)
	bars[len(bars)-1].Volume = 5000
	res := New().Detect("DOWN", buildSet(t, bars))
	if res.Direction != models.SignalBearish {
		t.Errorf("direction = %s, want BEARISH (bull %d bear %d)",
			res.Direction, res.Bullish.Confidence, res.Bearish.Confidence)
	}
}

func TestTieBreakPrefersBullish(t *testing.T) {
	bull := models.CaseAnalysis{Triggered: true, Confidence: 55, Reasons: []string{"bull"}}
	bear := models.CaseAnalysis{Triggered: true, Confidence: 55, Reasons: []string{"bear"}}
	dir, conf, reasons := resolve(bull, bear)
	if dir != models.SignalBullish || conf != 55 {
		t.Errorf("tie resolved to %s/%d, want BULLISH/55", dir, conf)
	}
	if len(reasons) != 1 || reasons[0] != "bull" {
		t.Errorf("tie must carry the bullish reasons, got %v", reasons)
	}

	// And the full detector is deterministic across repeated runs.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	set := buildSet(t, closesToBars(closes, 1500))
	first := New().Detect("OSC", set)
	for i := 0; i < 5; i++ {
		again := New().Detect("OSC", set)
		if again.Direction != first.Direction || again.Confidence != first.Confidence {
			t.Fatalf("run %d differs: %s/%d vs %s/%d",
				i, again.Direction, again.Confidence, first.Direction, first.Confidence)
		}
	}
}

func TestStrengthBuckets(t *testing.T) {
	tests := []struct {
		confidence int
		want       models.Strength
	}{
		{95, models.StrengthVeryStrong},
		{80, models.StrengthVeryStrong},
		{79, models.StrengthStrong},
		{60, models.StrengthStrong},
		{45, models.StrengthModerate},
		{40, models.StrengthModerate},
		{25, models.StrengthWeak},
		{5, models.StrengthVeryWeak},
		{0, models.StrengthVeryWeak},
	}
	for _, tt := range tests {
		if got := strengthBucket(tt.confidence); got != tt.want {
			t.Errorf("strengthBucket(%d) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}
