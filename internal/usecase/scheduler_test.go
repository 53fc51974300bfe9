package usecase

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
)

func newTestScheduler(t *testing.T, bars *stubBars, store *memStore, tickers []string) *Scheduler {
	t.Helper()
	return NewScheduler(
		newTestPipeline(t, bars),
		store,
		nil,
		noopMetrics{},
		quietLogger(t),
		SchedulerConfig{
			Tickers:      tickers,
			BatchSize:    2,
			Interval:     time.Hour,
			BatchPause:   time.Millisecond,
			ErrorBackoff: time.Millisecond,
		},
	)
}

func TestCyclePersistsAllHealthyTickers(t *testing.T) {
	tickers := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	data := make(map[string][]models.Bar, len(tickers))
	for _, tk := range tickers {
		data[tk] = risingBars(120)
	}
	bars := &stubBars{data: data}
	store := &memStore{}
	s := newTestScheduler(t, bars, store, tickers)

	if err := s.runCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := store.count(); got != len(tickers) {
		t.Errorf("persisted %d records, want %d", got, len(tickers))
	}
}

func TestOneFailingTickerDoesNotAbortBatch(t *testing.T) {
	tickers := []string{"AAA", "BAD", "CCC", "DDD"}
	data := map[string][]models.Bar{
		"AAA": risingBars(120),
		"CCC": risingBars(120),
		"DDD": flatBars(120),
	}
	bars := &stubBars{
		data: data,
		errs: map[string]error{"BAD": repository.ErrDataUnavailable},
	}
	store := &memStore{}
	s := newTestScheduler(t, bars, store, tickers)

	if err := s.runCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := store.count(); got != len(tickers)-1 {
		t.Errorf("persisted %d records, want %d", got, len(tickers)-1)
	}
}

func TestEmptyUniverseIsACycleError(t *testing.T) {
	s := newTestScheduler(t, &stubBars{}, &memStore{}, nil)
	if err := s.runCycle(context.Background()); err == nil {
		t.Error("expected an error for an empty universe")
	}
}

func TestUniversePrefersStoreTickers(t *testing.T) {
	store := &memStore{tickers: []string{"XXX", "YYY"}}
	s := newTestScheduler(t, &stubBars{}, store, []string{"FALLBACK"})
	got := s.universe(context.Background())
	if len(got) != 2 || got[0] != "XXX" {
		t.Errorf("universe = %v, want store tickers", got)
	}

	empty := &memStore{}
	s = newTestScheduler(t, &stubBars{}, empty, []string{"FALLBACK"})
	got = s.universe(context.Background())
	if len(got) != 1 || got[0] != "FALLBACK" {
		t.Errorf("universe = %v, want configured fallback", got)
	}
}

func TestPersistFailureCountsAsFailed(t *testing.T) {
	bars := &stubBars{data: map[string][]models.Bar{"AAA": risingBars(120)}}
	store := &memStore{appendE: context.DeadlineExceeded}
	s := newTestScheduler(t, bars, store, []string{"AAA"})

	analyzed, failed := s.runBatch(context.Background(), []string{"AAA"})
	if analyzed != 0 || failed != 1 {
		t.Errorf("analyzed=%d failed=%d, want 0/1", analyzed, failed)
	}
}

func TestStartStop(t *testing.T) {
	bars := &stubBars{data: map[string][]models.Bar{"AAA": risingBars(120)}}
	store := &memStore{}
	s := newTestScheduler(t, bars, store, []string{"AAA"})

	s.Start(context.Background())
	s.Start(context.Background()) // second start is a no-op

	deadline := time.After(5 * time.Second)
	for store.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no record persisted before deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	s.Stop()
	s.Stop() // second stop is a no-op
}

func TestSleepRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleep(ctx, time.Second) {
		t.Error("sleep must return false on a cancelled context")
	}
	if !sleep(context.Background(), 0) {
		t.Error("zero sleep on a live context must report completion")
	}
}
