package heikinashi

import (
	"math/rand"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func randomBars(n int, seed int64) []models.Bar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]models.Bar, n)
	price := 100.0
	for i := range bars {
		open := price
		clos := open + (rng.Float64()-0.5)*4
		high := open
		if clos > high {
			high = clos
		}
		high += rng.Float64() * 2
		low := open
		if clos < low {
			low = clos
		}
		low -= rng.Float64() * 2
		bars[i] = models.Bar{
			Timestamp: time.Unix(int64(i)*3600, 0),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     clos,
			Volume:    float64(1000 + rng.Intn(9000)),
		}
		price = clos
	}
	return bars
}

func TestTransformEmpty(t *testing.T) {
	if got := Transform(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestTransformRangeInvariant(t *testing.T) {
	bars := randomBars(500, 7)
	ha := Transform(bars)
	if len(ha) != len(bars) {
		t.Fatalf("length mismatch: %d vs %d", len(ha), len(bars))
	}
	for i, b := range ha {
		lo, hi := b.Open, b.Open
		if b.Close < lo {
			lo = b.Close
		}
		if b.Close > hi {
			hi = b.Close
		}
		if b.Low > lo || b.High < hi {
			t.Fatalf("bar %d violates range invariant: %+v", i, b)
		}
		if b.Low > b.High {
			t.Fatalf("bar %d has low above high: %+v", i, b)
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	bars := randomBars(200, 42)
	a := Transform(bars)
	b := Transform(bars)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestTransformRecurrence(t *testing.T) {
	bars := []models.Bar{
		{Open: 10, High: 12, Low: 9, Close: 11},
		{Open: 11, High: 14, Low: 10, Close: 13},
	}
	ha := Transform(bars)
	if got, want := ha[0].Open, 10.5; got != want {
		t.Errorf("first open = %v, want %v", got, want)
	}
	if got, want := ha[0].Close, 10.5; got != want {
		t.Errorf("first close = %v, want %v", got, want)
	}
	if got, want := ha[1].Open, (ha[0].Open+ha[0].Close)/2; got != want {
		t.Errorf("second open = %v, want %v", got, want)
	}
	if got, want := ha[1].Close, 12.0; got != want {
		t.Errorf("second close = %v, want %v", got, want)
	}
}

func TestClassifyPatterns(t *testing.T) {
	tests := []struct {
		name string
		bar  models.HeikinAshiBar
		want func(models.CandleClass) bool
	}{
		{
			name: "strong bull",
			// body 7 of range 10, upper shadow 1 < 0.3*7
			bar:  models.HeikinAshiBar{Open: 2, High: 10, Low: 0, Close: 9},
			want: func(c models.CandleClass) bool { return c.StrongBull && !c.StrongBear },
		},
		{
			name: "strong bear",
			bar:  models.HeikinAshiBar{Open: 9, High: 10, Low: 0, Close: 2},
			want: func(c models.CandleClass) bool { return c.StrongBear && !c.StrongBull },
		},
		{
			name: "hammer",
			// body 1, lower shadow 5 > 2, upper shadow 0.2 < 0.5
			bar:  models.HeikinAshiBar{Open: 9, High: 10.2, Low: 4, Close: 10},
			want: func(c models.CandleClass) bool { return c.Hammer && !c.ShootingStar },
		},
		{
			name: "shooting star",
			bar:  models.HeikinAshiBar{Open: 5, High: 10, Low: 4.8, Close: 5.5},
			want: func(c models.CandleClass) bool { return c.ShootingStar && !c.Hammer },
		},
		{
			name: "doji",
			// body 0.05 of range 2
			bar:  models.HeikinAshiBar{Open: 5, High: 6, Low: 4, Close: 5.05},
			want: func(c models.CandleClass) bool { return c.Doji },
		},
		{
			name: "large body not doji",
			bar:  models.HeikinAshiBar{Open: 4, High: 6.5, Low: 3.5, Close: 6},
			want: func(c models.CandleClass) bool { return !c.Doji },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify([]models.HeikinAshiBar{tt.bar})[0]
			if !tt.want(got) {
				t.Errorf("classification = %+v", got)
			}
		})
	}
}

func TestClassifyTrendStrength(t *testing.T) {
	up := models.HeikinAshiBar{Open: 1, High: 3, Low: 1, Close: 2}
	down := models.HeikinAshiBar{Open: 2, High: 2, Low: 0, Close: 1}
	flat := models.HeikinAshiBar{Open: 2, High: 3, Low: 1, Close: 2}

	bars := []models.HeikinAshiBar{up, up, up, down, down, flat, up}
	got := Classify(bars)
	want := []int{1, 2, 3, -1, -2, 0, 1}
	for i, c := range got {
		if c.TrendStrength != want[i] {
			t.Errorf("bar %d trend strength = %d, want %d", i, c.TrendStrength, want[i])
		}
	}
}
