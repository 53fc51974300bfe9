package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/logger"
)

// SchedulerConfig tunes the batch cycle.
type SchedulerConfig struct {
	Tickers      []string
	BatchSize    int
	Interval     time.Duration
	BatchPause   time.Duration
	ErrorBackoff time.Duration
}

func (c *SchedulerConfig) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 5
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.BatchPause <= 0 {
		c.BatchPause = time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = time.Minute
	}
}

// Scheduler drives the analysis cycle: it enumerates the ticker universe,
// analyzes tickers in concurrent batches, persists each successful record
// immediately and sleeps the remainder of the interval so the cadence
// self-corrects for pipeline runtime. One ticker's failure never aborts its
// batch; a failure of the cycle loop itself backs off and retries.
type Scheduler struct {
	pipeline  *Pipeline
	store     repository.PredictionStore
	publisher repository.Publisher
	metrics   repository.Metrics
	log       *logger.Logger
	cfg       SchedulerConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler wires the cycle loop. publisher may be nil; records then go
// straight to the store. With a publisher configured, records go to the
// message backend instead and a consumer drains them into the store.
func NewScheduler(
	pipeline *Pipeline,
	store repository.PredictionStore,
	publisher repository.Publisher,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg SchedulerConfig,
) *Scheduler {
	cfg.applyDefaults()
	return &Scheduler{
		pipeline:  pipeline,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches the cycle loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true
	go s.run(ctx)
}

// Stop cancels the loop and waits for the current cycle to wind down.
// Records persisted before the stop stay persisted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	s.log.Info("prediction scheduler started",
		logger.Duration("interval", s.cfg.Interval),
		logger.Int("batch_size", s.cfg.BatchSize))

	for {
		started := time.Now()
		if err := s.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("cycle failed, backing off", logger.Error(err))
			s.metrics.RecordError("cycle")
			if !sleep(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}

		wait := s.cfg.Interval - time.Since(started)
		if wait < 0 {
			wait = 0
		}
		if !sleep(ctx, wait) {
			return
		}
	}
}

// runCycle analyzes the whole universe once. Panics from a cycle surface as
// errors so the loop can back off instead of crashing the process.
func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	started := time.Now()
	universe := s.universe(ctx)
	if len(universe) == 0 {
		return fmt.Errorf("empty ticker universe")
	}

	var analyzed, failed int
	for start := 0; start < len(universe); start += s.cfg.BatchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		end := start + s.cfg.BatchSize
		if end > len(universe) {
			end = len(universe)
		}
		ok, bad := s.runBatch(ctx, universe[start:end])
		analyzed += ok
		failed += bad

		if end < len(universe) && !sleep(ctx, s.cfg.BatchPause) {
			return ctx.Err()
		}
	}

	elapsed := time.Since(started)
	s.metrics.RecordCycle(elapsed.Seconds(), analyzed, failed)
	s.log.Info("cycle complete",
		logger.Int("analyzed", analyzed),
		logger.Int("failed", failed),
		logger.Duration("elapsed", elapsed))
	return nil
}

// runBatch analyzes one batch concurrently. Each ticker is isolated: its
// panic or error is logged and counted, never propagated.
func (s *Scheduler) runBatch(ctx context.Context, tickers []string) (analyzed, failed int) {
	results := make([]*models.PredictionRecord, len(tickers))
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("ticker analysis panicked",
						logger.String("ticker", ticker),
						logger.Any("panic", r))
				}
			}()
			rec, err := s.pipeline.Analyze(ctx, ticker)
			if err != nil {
				s.log.Warn("ticker analysis failed",
					logger.String("ticker", ticker),
					logger.Error(err))
				return
			}
			results[i] = rec
		}(i, ticker)
	}
	wg.Wait()

	for i, rec := range results {
		if rec == nil {
			failed++
			continue
		}
		if err := s.persist(ctx, rec); err != nil {
			// At-most-once: the record is dropped, the cycle continues.
			s.log.Error("persist failed",
				logger.String("ticker", tickers[i]),
				logger.Error(err))
			s.metrics.RecordError("persist")
			failed++
			continue
		}
		analyzed++
	}
	return analyzed, failed
}

func (s *Scheduler) persist(ctx context.Context, rec *models.PredictionRecord) error {
	if s.publisher != nil {
		return s.publisher.Publish(ctx, rec)
	}
	return s.store.Append(ctx, rec)
}

// universe prefers tickers seen in the store and falls back to the
// configured list.
func (s *Scheduler) universe(ctx context.Context) []string {
	active, err := s.store.ActiveTickers(ctx, 200)
	if err != nil || len(active) == 0 {
		return s.cfg.Tickers
	}
	return active
}

// sleep waits d or until the context ends; it reports whether the full wait
// completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
