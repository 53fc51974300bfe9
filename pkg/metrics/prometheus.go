package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	cycleAnalyzed prometheus.Gauge
	cycleFailed   prometheus.Gauge
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_predictions_total",
				Help: "Total number of prediction records produced",
			},
			[]string{"ticker", "signal"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockpulse_cycle_duration_seconds",
				Help:    "Duration of a full analysis cycle in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		cycleAnalyzed: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockpulse_cycle_analyzed",
				Help: "Tickers successfully analyzed in the last cycle",
			},
		),
		cycleFailed: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockpulse_cycle_failed",
				Help: "Tickers that failed in the last cycle",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_price",
				Help: "Last streamed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts one produced prediction record.
func (r *Recorder) RecordPrediction(ticker, signal string) {
	r.predictions.WithLabelValues(ticker, signal).Inc()
}

// RecordCycle records the outcome of one full analysis cycle.
func (r *Recorder) RecordCycle(seconds float64, analyzed, failed int) {
	r.cycleDuration.Observe(seconds)
	r.cycleAnalyzed.Set(float64(analyzed))
	r.cycleFailed.Set(float64(failed))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last streamed price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
