package usecase

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

type stubStream struct {
	quotes    chan *models.Quote
	errs      chan error
	connected bool
}

func newStubStream() *stubStream {
	return &stubStream{
		quotes: make(chan *models.Quote, 16),
		errs:   make(chan error, 1),
	}
}

func (s *stubStream) Connect(context.Context) error { s.connected = true; return nil }
func (s *stubStream) Subscribe(context.Context) error { return nil }
func (s *stubStream) Read(context.Context) (<-chan *models.Quote, <-chan error) {
	return s.quotes, s.errs
}
func (s *stubStream) Reconnect(context.Context) error { return nil }
func (s *stubStream) Close() error                    { s.connected = false; return nil }
func (s *stubStream) IsConnected() bool               { return s.connected }

func TestQuoteCollectorTracksLatest(t *testing.T) {
	stream := newStubStream()
	c := NewQuoteCollector(stream, noopMetrics{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !c.IsConnected() {
		t.Error("collector should be connected after Start")
	}

	stream.quotes <- &models.Quote{Symbol: "AAPL", Price: 190.1, Timestamp: 1}
	stream.quotes <- &models.Quote{Symbol: "AAPL", Price: 190.7, Timestamp: 2}
	stream.quotes <- &models.Quote{Symbol: "MSFT", Price: 420.0, Timestamp: 3}

	deadline := time.After(2 * time.Second)
	for {
		if q, ok := c.Quote("AAPL"); ok && q.Price == 190.7 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("latest AAPL quote never observed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := len(c.Latest()); got != 2 {
		t.Errorf("latest holds %d symbols, want 2", got)
	}
	if _, ok := c.Quote("TSLA"); ok {
		t.Error("unseen symbol must report not found")
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
}
