package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/services/projection"
	"StockPulse/pkg/logger"
)

type stubBars struct {
	mu   sync.Mutex
	data map[string][]models.Bar
	errs map[string]error
}

func (s *stubBars) Bars(_ context.Context, ticker, _, _ string) ([]models.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[ticker]; ok {
		return nil, err
	}
	return s.data[ticker], nil
}

type stubFundamentals struct{ f models.Fundamentals }

func (s *stubFundamentals) Fundamentals(context.Context, string) (models.Fundamentals, error) {
	return s.f, nil
}

type stubNews struct{ items []models.NewsItem }

func (s *stubNews) RecentNews(context.Context, string, int) ([]models.NewsItem, error) {
	return s.items, nil
}

type memStore struct {
	mu      sync.Mutex
	records []*models.PredictionRecord
	tickers []string
	appendE error
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) Append(_ context.Context, rec *models.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendE != nil {
		return m.appendE
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Latest(context.Context, string, int) ([]models.PredictionRecord, error) {
	return nil, nil
}

func (m *memStore) History(context.Context, string, time.Time, int) ([]models.PredictionRecord, error) {
	return nil, nil
}

func (m *memStore) ActiveTickers(context.Context, int) ([]string, error) {
	return m.tickers, nil
}

func (m *memStore) Health(context.Context) error { return nil }
func (m *memStore) Close() error                 { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type noopMetrics struct{}

func (noopMetrics) RecordPrediction(string, string)  {}
func (noopMetrics) RecordCycle(float64, int, int)    {}
func (noopMetrics) RecordError(string)               {}
func (noopMetrics) RecordLastPrice(string, float64)  {}
func (noopMetrics) RecordLatency(string, float64)    {}

func quietLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "disabled", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func flatBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: time.Unix(int64(i)*86400, 0),
			Open:      50, High: 50, Low: 50, Close: 50,
			Volume: 1_000_000,
		}
	}
	return bars
}

func risingBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	price := 100.0
	for i := range bars {
		next := price * 1.01
		bars[i] = models.Bar{
			Timestamp: time.Unix(int64(i)*86400, 0),
			Open:      price, High: next * 1.002, Low: price * 0.998, Close: next,
			Volume: 1_000_000,
		}
		price = next
	}
	return bars
}

func newTestPipeline(t *testing.T, bars *stubBars) *Pipeline {
	t.Helper()
	return NewPipeline(
		bars,
		&stubFundamentals{f: models.Fundamentals{Sector: "Technology", MarketCap: 2e12, AvgVolume: 5e7}},
		&stubNews{},
		nil,
		projection.New(rand.New(rand.NewSource(1))),
		noopMetrics{},
		quietLogger(t),
		PipelineConfig{BarPeriod: "6mo", BarInterval: "1d", NewsHoursBack: 24},
	)
}

func TestAnalyzeFlatSeriesIsNeutral(t *testing.T) {
	bars := &stubBars{data: map[string][]models.Bar{"FLAT": flatBars(120)}}
	rec, err := newTestPipeline(t, bars).Analyze(context.Background(), "FLAT")
	if err != nil {
		t.Fatal(err)
	}
	if rec.SignalType != models.SignalNeutral {
		t.Errorf("signal = %s, want NEUTRAL", rec.SignalType)
	}
	if rec.Confidence >= 40 {
		t.Errorf("confidence = %v, want < 40", rec.Confidence)
	}
	if rec.CurrentPrice != 50 {
		t.Errorf("current price = %v, want 50", rec.CurrentPrice)
	}
}

func TestAnalyzeMissingDataFails(t *testing.T) {
	bars := &stubBars{
		data: map[string][]models.Bar{},
		errs: map[string]error{"GONE": repository.ErrDataUnavailable},
	}
	if _, err := newTestPipeline(t, bars).Analyze(context.Background(), "GONE"); !errors.Is(err, repository.ErrDataUnavailable) {
		t.Errorf("err = %v, want ErrDataUnavailable", err)
	}
	if _, err := newTestPipeline(t, bars).Analyze(context.Background(), "EMPTY"); !errors.Is(err, repository.ErrDataUnavailable) {
		t.Errorf("empty bars err = %v, want ErrDataUnavailable", err)
	}
}

func TestAnalyzeScreeningScoreWithinBounds(t *testing.T) {
	bars := &stubBars{data: map[string][]models.Bar{"UP": risingBars(150)}}
	rec, err := newTestPipeline(t, bars).Analyze(context.Background(), "UP")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ScreeningScore < 0 || rec.ScreeningScore > 100 {
		t.Errorf("screening score %v out of [0,100]", rec.ScreeningScore)
	}
	if rec.Volume != 1_000_000 {
		t.Errorf("volume = %d, want 1000000", rec.Volume)
	}
}

func TestBoostedScore(t *testing.T) {
	tests := []struct {
		base, confidence, want float64
	}{
		{60, 50, 60},  // confidence 50 is the pivot
		{60, 90, 80},  // +20 boost
		{60, 10, 40},  // -20 penalty
		{95, 100, 100}, // clamped high
		{5, 0, 0},      // clamped low
	}
	for _, tt := range tests {
		if got := boostedScore(tt.base, tt.confidence); got != tt.want {
			t.Errorf("boostedScore(%v, %v) = %v, want %v", tt.base, tt.confidence, got, tt.want)
		}
	}
}
