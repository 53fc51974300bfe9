package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/services/indicators"
	"StockPulse/internal/services/projection"
	"StockPulse/internal/services/screener"
	"StockPulse/internal/services/sentiment"
	"StockPulse/internal/services/signals"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// PipelineConfig tunes one ticker analysis pass.
type PipelineConfig struct {
	BarPeriod        string
	BarInterval      string
	NewsHoursBack    int
	SentimentEnabled bool
}

func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BarPeriod:     "6mo",
		BarInterval:   "1d",
		NewsHoursBack: 24,
	}
}

// Pipeline runs the full per-ticker analysis: bars, indicators, screening,
// signal detection, sentiment blending and price projection, producing one
// PredictionRecord. Failures are returned to the caller; the pipeline itself
// never panics outward.
type Pipeline struct {
	bars         repository.BarSource
	fundamentals repository.FundamentalsSource
	news         repository.NewsSource
	analyzer     *sentiment.Analyzer
	scorer       *screener.Scorer
	detector     *signals.Detector
	projector    *projection.Projector
	metrics      repository.Metrics
	log          *logger.Logger
	cfg          PipelineConfig
}

func NewPipeline(
	bars repository.BarSource,
	fundamentals repository.FundamentalsSource,
	news repository.NewsSource,
	analyzer *sentiment.Analyzer,
	projector *projection.Projector,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg PipelineConfig,
) *Pipeline {
	if cfg.BarPeriod == "" {
		cfg = defaultPipelineConfig()
	}
	return &Pipeline{
		bars:         bars,
		fundamentals: fundamentals,
		news:         news,
		analyzer:     analyzer,
		scorer:       screener.New(),
		detector:     signals.New(),
		projector:    projector,
		metrics:      metrics,
		log:          log,
		cfg:          cfg,
	}
}

// Analyze produces one prediction record for the ticker, or an error that
// the scheduler logs and contains at the ticker boundary.
func (p *Pipeline) Analyze(ctx context.Context, ticker string) (*models.PredictionRecord, error) {
	started := time.Now()

	set, fund, err := p.prepare(ctx, ticker)
	if err != nil {
		return nil, err
	}

	screening := p.scorer.Screen(ticker, set, fund)
	signal := p.detector.Detect(ticker, set)

	agg := p.blendSentiment(ctx, ticker, fund.Sector)
	confidence := sentiment.AdjustConfidence(float64(signal.Confidence), signal.Direction, agg)

	targets := p.projector.Project(set, signal.Direction, confidence)

	last := set.Bars[len(set.Bars)-1]
	rec := &models.PredictionRecord{
		Ticker:              ticker,
		Timestamp:           time.Now().UTC(),
		CurrentPrice:        util.Round2(last.Close),
		SignalType:          signal.Direction,
		Confidence:          util.Round2(confidence),
		Reasons:             signal.Reasons,
		ScreeningScore:      boostedScore(float64(screening.Score), confidence),
		Sector:              screening.Sector,
		PredictedPrice1H:    targets.Price1H,
		PredictedPrice1D:    targets.Price1D,
		PredictedPrice1W:    targets.Price1W,
		Volume:              int64(last.Volume),
		RSI:                 roundOrZero(set.Last(indicators.SeriesRSI)),
		MACD:                roundOrZero(set.Last(indicators.SeriesMACD)),
		BollingerPosition:   roundOrZero(set.Last(indicators.SeriesBBPos)),
		SentimentScore:      util.Round2(agg.Score),
		SentimentConfidence: util.Round2(agg.Confidence),
		SentimentImpact:     agg.Impact,
		NewsCount:           agg.NewsCount,
	}

	p.metrics.RecordPrediction(ticker, string(signal.Direction))
	p.metrics.RecordLatency("pipeline_analyze", time.Since(started).Seconds())
	return rec, nil
}

// Screen runs screening alone for the on-demand API endpoint.
func (p *Pipeline) Screen(ctx context.Context, ticker string) (models.ScreeningResult, error) {
	set, fund, err := p.prepare(ctx, ticker)
	if err != nil {
		return models.ScreeningResult{}, err
	}
	return p.scorer.Screen(ticker, set, fund), nil
}

// Signal runs signal detection alone for the on-demand API endpoint.
func (p *Pipeline) Signal(ctx context.Context, ticker string) (models.SignalResult, error) {
	set, _, err := p.prepare(ctx, ticker)
	if err != nil {
		return models.SignalResult{}, err
	}
	return p.detector.Detect(ticker, set), nil
}

func (p *Pipeline) prepare(ctx context.Context, ticker string) (*indicators.Set, models.Fundamentals, error) {
	bars, err := p.bars.Bars(ctx, ticker, p.cfg.BarPeriod, p.cfg.BarInterval)
	if err != nil {
		return nil, models.Fundamentals{}, fmt.Errorf("fetch bars for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, models.Fundamentals{}, fmt.Errorf("%s: %w", ticker, repository.ErrDataUnavailable)
	}
	set, err := indicators.Compute(bars)
	if err != nil {
		return nil, models.Fundamentals{}, fmt.Errorf("compute indicators for %s: %w", ticker, err)
	}
	fund, err := p.fundamentals.Fundamentals(ctx, ticker)
	if err != nil {
		fund = models.Fundamentals{}
	}
	return set, fund, nil
}

// blendSentiment fetches recent news and aggregates classified sentiment.
// Any failure degrades to the neutral aggregate; sentiment never fails a
// ticker.
func (p *Pipeline) blendSentiment(ctx context.Context, ticker, sector string) models.TickerSentiment {
	neutral := models.TickerSentiment{Ticker: ticker, Impact: models.ImpactNegligible}
	if !p.cfg.SentimentEnabled || p.analyzer == nil || p.news == nil {
		return neutral
	}

	items, err := p.news.RecentNews(ctx, ticker, p.cfg.NewsHoursBack)
	if err != nil {
		p.log.Debug("news fetch failed", logger.String("ticker", ticker), logger.Error(err))
		return neutral
	}
	if len(items) == 0 {
		return neutral
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Content()
	}
	cc := service.ClassifyContext{
		Ticker:           ticker,
		Sector:           sector,
		MarketConditions: "neutral",
		VolatilityRegime: "normal",
		Timestamp:        time.Now().UTC(),
	}
	classified := p.analyzer.AnalyzeBatch(ctx, texts, cc)
	return sentiment.Aggregate(ticker, classified, len(items))
}

// boostedScore folds the adjusted signal confidence back into the screening
// score before persistence: half a point per confidence point above or below
// 50, bounded to [0, 100].
func boostedScore(base, confidence float64) float64 {
	return util.Round2(util.Clamp(base+(confidence-50)*0.5, 0, 100))
}

func roundOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return util.Round2(v)
}
