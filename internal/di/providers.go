package di

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/sentimentllm"
	"StockPulse/internal/services/projection"
	"StockPulse/internal/services/sentiment"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePredictionStore creates the ClickHouse prediction store and ensures
// its schema exists.
func ProvidePredictionStore(chClient *pkgch.Client, l *applogger.Logger) (repository.PredictionStore, error) {
	store := internalrepo.NewCHPredictionStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketDataClient creates the market data REST client.
func ProvideMarketDataClient(cfg *config.Config, l *applogger.Logger) *marketdata.Client {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.MarketData.RequestTimeout))
	return marketdata.New(httpClient, cfg.MarketData.BaseURL, cfg.MarketData.APIKey,
		marketdata.WithRateLimit(cfg.MarketData.RateCapacity, cfg.MarketData.RateRefill),
		marketdata.WithLogger(l),
	)
}

// ProvideSentimentAnalyzer creates the news sentiment analyzer. Returns nil
// when sentiment analysis is disabled; the pipeline then reports neutral
// sentiment for every ticker.
func ProvideSentimentAnalyzer(cfg *config.Config, l *applogger.Logger) (*sentiment.Analyzer, error) {
	if !cfg.Sentiment.Enabled {
		return nil, nil
	}

	signalCache, err := provideSentimentCache(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Sentiment.Timeout))
	var classifier domsvc.Classifier = sentimentllm.New(
		httpClient,
		cfg.Sentiment.ServiceURL,
		cfg.Sentiment.APIKey,
		cfg.Sentiment.Model,
	)

	return sentiment.NewAnalyzer(classifier, signalCache, l,
		sentiment.WithCacheTTL(cfg.Sentiment.CacheTTL),
		sentiment.WithCallTimeout(cfg.Sentiment.Timeout),
	), nil
}

func provideSentimentCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Sentiment.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Sentiment.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr %q: %w", cfg.Sentiment.Redis.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port %q: %w", portStr, err)
	}

	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Sentiment.Redis.Password),
		pkgcache.WithRedisDB(cfg.Sentiment.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache), nil
}

// ProvidePipeline creates the per-ticker analysis pipeline.
func ProvidePipeline(
	md *marketdata.Client,
	analyzer *sentiment.Analyzer,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Pipeline {
	projector := projection.New(rand.New(rand.NewSource(time.Now().UnixNano())))
	return usecase.NewPipeline(md, md, md, analyzer, projector, m, l, usecase.PipelineConfig{
		BarPeriod:        cfg.MarketData.BarPeriod,
		BarInterval:      cfg.MarketData.BarInterval,
		NewsHoursBack:    cfg.Sentiment.NewsHoursBack,
		SentimentEnabled: cfg.Sentiment.Enabled,
	})
}

// ProvideKafkaProducer creates a Kafka producer when the kafka backend is
// selected; otherwise predictions go straight to ClickHouse and no producer
// exists.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the prediction publisher for the kafka backend.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML when
// the kafka backend is selected.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvidePredictionsConsumer registers the handler that drains the
// predictions topic into ClickHouse.
func ProvidePredictionsConsumer(
	store repository.PredictionStore,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PredictionsConsumer {
	if cfg.Backend.Type != "kafka" {
		return nil
	}
	return usecase.NewPredictionsConsumer(cfg.Kafka.Topic, store, l)
}

// ProvideQuoteCollector creates the live quote collector when the WebSocket
// stream is enabled.
func ProvideQuoteCollector(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *usecase.QuoteCollector {
	if !cfg.MarketData.StreamEnabled {
		return nil
	}
	stream := marketdata.NewStream(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.MarketData.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
		l,
	)
	return usecase.NewQuoteCollector(stream, m)
}

// ProvideScheduler creates the periodic analysis scheduler.
func ProvideScheduler(
	pipeline *usecase.Pipeline,
	store repository.PredictionStore,
	publisher repository.Publisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Scheduler {
	return usecase.NewScheduler(pipeline, store, publisher, m, l, usecase.SchedulerConfig{
		Tickers:      cfg.MarketData.Symbols,
		BatchSize:    cfg.Scheduler.BatchSize,
		Interval:     cfg.Scheduler.Interval,
		BatchPause:   cfg.Scheduler.BatchPause,
		ErrorBackoff: cfg.Scheduler.ErrorBackoff,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	scheduler *usecase.Scheduler,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.PredictionsConsumer,
	publisher repository.Publisher,
	chClient *pkgch.Client,
	store repository.PredictionStore,
	pipeline *usecase.Pipeline,
	l *applogger.Logger,
) *server.App {
	var handler pkgkafka.MessageHandler
	if kh != nil {
		handler = kh
	}
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, scheduler, collector, consumer, handler, publisher, chClient)
	app.SetHTTPHandler(api.NewPredictionsHandler(l, store, pipeline, collector))
	return app
}
