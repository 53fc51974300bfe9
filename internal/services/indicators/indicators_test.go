package indicators

import (
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func barsFromCloses(closes []float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Bar{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return out
}

func TestComputeEmptyInput(t *testing.T) {
	if _, err := Compute(nil); err != ErrNoData {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestSMAWarmupIsNaN(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("warmup values must be NaN, got %v", out[:2])
	}
	if out[2] != 2 || out[4] != 4 {
		t.Fatalf("unexpected SMA values: %v", out)
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out := RSI(closes, 14)
	last := out[len(out)-1]
	if last != 100 {
		t.Fatalf("monotone gains must give RSI 100, got %v", last)
	}
}

func TestRSIFlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	out := RSI(closes, 14)
	// no gains and no losses: avg_loss == 0 path
	if out[len(out)-1] != 100 {
		t.Fatalf("flat series RSI = %v, want 100", out[len(out)-1])
	}
}

func TestATRPositiveAndWarm(t *testing.T) {
	bars := barsFromCloses([]float64{
		100, 101, 102, 101, 103, 104, 102, 105, 106, 104,
		107, 108, 106, 109, 110, 111, 109, 112, 113, 114,
	})
	set, err := Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	atr := set.Last(SeriesATR)
	if math.IsNaN(atr) || atr <= 0 {
		t.Fatalf("ATR should be warm and positive, got %v", atr)
	}
}

func TestShortHistoryYieldsNaNNotError(t *testing.T) {
	set, err := Compute(barsFromCloses([]float64{100, 101, 102}))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !math.IsNaN(set.Last(SeriesEMA89)) {
		t.Fatalf("EMA_89 on 3 bars must be NaN")
	}
	if !math.IsNaN(set.Last(SeriesADX)) {
		t.Fatalf("ADX on 3 bars must be NaN")
	}
}

func TestBollingerPositionBounds(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))*5
	}
	_, _, pos := Bollinger(closes, 20, 2)
	last := pos[len(pos)-1]
	if math.IsNaN(last) {
		t.Fatalf("position should be warm")
	}
	if last < -0.5 || last > 1.5 {
		t.Fatalf("position far out of band range: %v", last)
	}
}

func TestStochasticFlatWindow(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 100, 100, 100
	}
	k, _ := Stochastic(highs, lows, closes, 8, 3)
	if k[n-1] != 50 {
		t.Fatalf("flat window %%K = %v, want 50", k[n-1])
	}
}

func TestVolumeRatioAboveAverage(t *testing.T) {
	bars := barsFromCloses(make([]float64, 25))
	for i := range bars {
		bars[i].Close = 100
		bars[i].High = 101
		bars[i].Low = 99
		bars[i].Volume = 1_000_000
	}
	bars[len(bars)-1].Volume = 2_000_000
	set, err := Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	ratio := set.Last(SeriesVolRatio)
	if ratio < 1.5 {
		t.Fatalf("doubled volume should give ratio near 2, got %v", ratio)
	}
}
