package usecase

import (
	"context"
	"sync"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

// QuoteCollector consumes the realtime quote stream, keeps the latest quote
// per symbol for the API and feeds the last-price gauge. A stream error
// triggers a reconnect; the collector itself stays up.
type QuoteCollector struct {
	stream  drepo.MarketStream
	metrics drepo.Metrics

	mu     sync.RWMutex
	latest map[string]*models.Quote
}

func NewQuoteCollector(stream drepo.MarketStream, metrics drepo.Metrics) *QuoteCollector {
	return &QuoteCollector{
		stream:  stream,
		metrics: metrics,
		latest:  make(map[string]*models.Quote),
	}
}

// IsConnected reports whether the market stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case q := <-qCh:
			if q == nil {
				continue
			}
			c.record(q)
		}
	}
}

func (c *QuoteCollector) record(q *models.Quote) {
	c.mu.Lock()
	c.latest[q.Symbol] = q
	c.mu.Unlock()
	c.metrics.RecordLastPrice(q.Symbol, q.Price)
}

// Latest returns the most recent quote per symbol.
func (c *QuoteCollector) Latest() []models.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Quote, 0, len(c.latest))
	for _, q := range c.latest {
		out = append(out, *q)
	}
	return out
}

// Quote returns the latest quote for one symbol, if seen.
func (c *QuoteCollector) Quote(symbol string) (models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.latest[symbol]
	if !ok {
		return models.Quote{}, false
	}
	return *q, true
}

func (c *QuoteCollector) Stop() error { return c.stream.Close() }
