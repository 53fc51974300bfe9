package sentiment

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
)

type stubClassifier struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	calls    int32
	fn       func(text string) (models.SentimentSignal, error)
}

func (s *stubClassifier) Classify(_ context.Context, text string, _ service.ClassifyContext) (models.SentimentSignal, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&s.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&s.maxSeen, prev, cur) {
			break
		}
	}
	atomic.AddInt32(&s.calls, 1)
	return s.fn(text)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "disabled", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func newTestAnalyzer(t *testing.T, fn func(string) (models.SentimentSignal, error)) (*Analyzer, *stubClassifier) {
	t.Helper()
	stub := &stubClassifier{fn: fn}
	a := NewAnalyzer(stub, cache.NewMemoryCache(), testLogger(t))
	return a, stub
}

func TestAnalyzeBatchBoundedConcurrency(t *testing.T) {
	a, stub := newTestAnalyzer(t, func(text string) (models.SentimentSignal, error) {
		return models.SentimentSignal{Score: 0.5, Confidence: 0.8}, nil
	})
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = "headline " + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	out := a.AnalyzeBatch(context.Background(), texts, service.ClassifyContext{Ticker: "AAPL"})
	if len(out) != len(texts) {
		t.Fatalf("got %d signals, want %d", len(out), len(texts))
	}
	if stub.maxSeen > 5 {
		t.Errorf("saw %d concurrent calls, limit is 5", stub.maxSeen)
	}
}

func TestClassifierFailureFallsBack(t *testing.T) {
	a, _ := newTestAnalyzer(t, func(string) (models.SentimentSignal, error) {
		return models.SentimentSignal{}, errors.New("model service down")
	})
	out := a.AnalyzeBatch(context.Background(),
		[]string{"Company beats expectations with record profit"},
		service.ClassifyContext{Ticker: "MSFT"})
	sig := out[0]
	if sig.Confidence != 0.3 {
		t.Errorf("fallback confidence = %v, want 0.3", sig.Confidence)
	}
	if sig.Score <= 0 {
		t.Errorf("positive headline fallback score = %v, want > 0", sig.Score)
	}
	if sig.ContentHash == "" {
		t.Error("fallback signal must carry the content hash")
	}
}

func TestCacheSkipsRepeatClassification(t *testing.T) {
	a, stub := newTestAnalyzer(t, func(string) (models.SentimentSignal, error) {
		return models.SentimentSignal{Score: -0.4, Confidence: 0.9}, nil
	})
	cc := service.ClassifyContext{Ticker: "TSLA"}
	text := []string{"Regulator opens probe into vehicle recalls"}

	first := a.AnalyzeBatch(context.Background(), text, cc)[0]
	second := a.AnalyzeBatch(context.Background(), text, cc)[0]

	if got := atomic.LoadInt32(&stub.calls); got != 1 {
		t.Errorf("classifier called %d times, want 1", got)
	}
	if first.Score != second.Score || first.ContentHash != second.ContentHash {
		t.Errorf("cached signal differs: %+v vs %+v", first, second)
	}
}

func TestAggregateWeightedMean(t *testing.T) {
	signals := []models.SentimentSignal{
		{Score: 0.8, Confidence: 0.9},
		{Score: -0.2, Confidence: 0.3},
		{Score: 0.4, Confidence: 0.6},
	}
	agg := Aggregate("NVDA", signals, 3)

	totalW := 0.9 + 0.3 + 0.6
	wantScore := (0.8*0.9 + -0.2*0.3 + 0.4*0.6) / totalW
	wantConf := (0.9*0.9 + 0.3*0.3 + 0.6*0.6) / totalW
	if math.Abs(agg.Score-wantScore) > 1e-9 {
		t.Errorf("score = %v, want %v", agg.Score, wantScore)
	}
	if math.Abs(agg.Confidence-wantConf) > 1e-9 {
		t.Errorf("confidence = %v, want %v", agg.Confidence, wantConf)
	}
	if agg.NewsCount != 3 {
		t.Errorf("news count = %d, want 3", agg.NewsCount)
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	agg := Aggregate("AMD", nil, 0)
	if agg.Score != 0 || agg.Confidence != 0 {
		t.Errorf("empty batch aggregate = (%v, %v), want (0, 0)", agg.Score, agg.Confidence)
	}
	if agg.Impact != models.ImpactNegligible {
		t.Errorf("impact = %s, want negligible", agg.Impact)
	}
}

func TestImpactBuckets(t *testing.T) {
	tests := []struct {
		score, conf float64
		want        models.Impact
	}{
		{0.5, 0.8, models.ImpactImmediate},
		{-0.5, 0.8, models.ImpactImmediate},
		{0.25, 0.6, models.ImpactShortTerm},
		{0.15, 0.4, models.ImpactLongTerm},
		{0.05, 0.9, models.ImpactNegligible},
		{0.5, 0.2, models.ImpactNegligible},
	}
	for _, tt := range tests {
		if got := impactBucket(tt.score, tt.conf); got != tt.want {
			t.Errorf("impactBucket(%v, %v) = %s, want %s", tt.score, tt.conf, got, tt.want)
		}
	}
}

func TestAdjustConfidence(t *testing.T) {
	tests := []struct {
		name      string
		technical float64
		direction models.Direction
		sentiment models.TickerSentiment
		want      float64
	}{
		{
			name:      "low sentiment confidence is a no-op",
			technical: 70, direction: models.SignalBullish,
			sentiment: models.TickerSentiment{Score: 0.9, Confidence: 0.4},
			want:      70,
		},
		{
			name:      "aligned bullish boost capped at 15",
			technical: 70, direction: models.SignalBullish,
			sentiment: models.TickerSentiment{Score: 0.9, Confidence: 0.9},
			want:      85,
		},
		{
			name:      "aligned bearish boost",
			technical: 50, direction: models.SignalBearish,
			sentiment: models.TickerSentiment{Score: -0.5, Confidence: 0.6},
			want:      56,
		},
		{
			name:      "opposed bullish penalty capped at -10",
			technical: 70, direction: models.SignalBullish,
			sentiment: models.TickerSentiment{Score: -0.9, Confidence: 0.9},
			want:      60,
		},
		{
			name:      "weakly opposed sentiment is a no-op",
			technical: 70, direction: models.SignalBullish,
			sentiment: models.TickerSentiment{Score: -0.1, Confidence: 0.9},
			want:      70,
		},
		{
			name:      "result clamped at 100",
			technical: 95, direction: models.SignalBullish,
			sentiment: models.TickerSentiment{Score: 0.9, Confidence: 0.9},
			want:      100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustConfidence(tt.technical, tt.direction, tt.sentiment)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AdjustConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}
