//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePredictionStore,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Domain services
		ProvideMarketDataClient,
		ProvideSentimentAnalyzer,
		ProvidePublisher,

		// Use cases
		ProvidePipeline,
		ProvidePredictionsConsumer,
		ProvideQuoteCollector,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
