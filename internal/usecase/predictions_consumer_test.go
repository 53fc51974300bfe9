package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func TestConsumerAppendsDecodedRecord(t *testing.T) {
	store := &memStore{}
	c := NewPredictionsConsumer("predictions", store, quietLogger(t))
	if c.Topic() != "predictions" {
		t.Errorf("topic = %q", c.Topic())
	}

	rec := models.PredictionRecord{
		Ticker:       "AAPL",
		Timestamp:    time.Now().UTC(),
		CurrentPrice: 190.5,
		SignalType:   models.SignalBullish,
		Confidence:   72,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Handle(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	if store.count() != 1 {
		t.Fatalf("stored %d records, want 1", store.count())
	}
}

func TestConsumerDropsMalformedMessages(t *testing.T) {
	store := &memStore{}
	c := NewPredictionsConsumer("predictions", store, quietLogger(t))

	if err := c.Handle(context.Background(), []byte("not json")); err != nil {
		t.Errorf("malformed payload must not error: %v", err)
	}
	if err := c.Handle(context.Background(), []byte(`{"confidence": 50}`)); err != nil {
		t.Errorf("payload without ticker must not error: %v", err)
	}
	if store.count() != 0 {
		t.Errorf("stored %d records, want 0", store.count())
	}
}

func TestConsumerPropagatesStoreErrors(t *testing.T) {
	store := &memStore{appendE: context.DeadlineExceeded}
	c := NewPredictionsConsumer("predictions", store, quietLogger(t))

	data, _ := json.Marshal(models.PredictionRecord{Ticker: "MSFT"})
	if err := c.Handle(context.Background(), data); err == nil {
		t.Error("store failure must surface so the consumer can retry")
	}
}
