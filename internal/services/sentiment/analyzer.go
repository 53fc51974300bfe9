package sentiment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const maxInFlight = 5

// Analyzer classifies batches of news text through an injected Classifier and
// aggregates the results per ticker. Classifier failures degrade to a local
// lexicon score with fixed low confidence and never surface to the caller.
// Results are cached by content hash with a TTL so repeated headlines skip
// the classifier.
type Analyzer struct {
	classifier service.Classifier
	cache      cache.Service
	cacheTTL   time.Duration
	timeout    time.Duration
	log        *logger.Logger
}

type Option func(*Analyzer)

func WithCacheTTL(ttl time.Duration) Option {
	return func(a *Analyzer) { a.cacheTTL = ttl }
}

func WithCallTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

func NewAnalyzer(classifier service.Classifier, c cache.Service, log *logger.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier: classifier,
		cache:      c,
		cacheTTL:   time.Hour,
		timeout:    30 * time.Second,
		log:        log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeBatch classifies each text with at most 5 calls in flight and
// returns one signal per input, in input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, texts []string, cc service.ClassifyContext) []models.SentimentSignal {
	out := make([]models.SentimentSignal, len(texts))
	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = a.analyzeOne(ctx, text, cc)
		}(i, text)
	}
	wg.Wait()
	return out
}

func (a *Analyzer) analyzeOne(ctx context.Context, text string, cc service.ClassifyContext) models.SentimentSignal {
	hash := ContentHash(text)
	key := "sentiment:" + hash

	var cached models.SentimentSignal
	if err := a.cache.Get(ctx, key, &cached); err == nil {
		return cached
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	sig, err := a.classifier.Classify(callCtx, text, cc)
	if err != nil {
		a.log.Debug("sentiment classifier failed, using lexicon fallback",
			logger.String("ticker", cc.Ticker),
			logger.Error(err))
		sig = fallbackSignal(text, cc)
	}
	sig.ContentHash = hash

	if err := a.cache.Set(ctx, key, sig, a.cacheTTL); err != nil {
		a.log.Debug("sentiment cache write failed", logger.Error(err))
	}
	return sig
}

// Aggregate reduces a ticker's signals to a confidence-weighted mean. An
// empty or zero-weight batch yields zero score and confidence, not a
// division by zero.
func Aggregate(ticker string, signals []models.SentimentSignal, newsCount int) models.TickerSentiment {
	var totalWeight, weightedScore, weightedConf float64
	for _, s := range signals {
		totalWeight += s.Confidence
		weightedScore += s.Score * s.Confidence
		weightedConf += s.Confidence * s.Confidence
	}

	agg := models.TickerSentiment{
		Ticker:    ticker,
		Impact:    models.ImpactNegligible,
		NewsCount: newsCount,
	}
	if totalWeight > 0 {
		agg.Score = weightedScore / totalWeight
		agg.Confidence = weightedConf / totalWeight
	}
	agg.Impact = impactBucket(agg.Score, agg.Confidence)
	return agg
}

func impactBucket(score, confidence float64) models.Impact {
	abs := math.Abs(score)
	switch {
	case confidence > 0.7 && abs > 0.3:
		return models.ImpactImmediate
	case confidence > 0.5 && abs > 0.2:
		return models.ImpactShortTerm
	case confidence > 0.3 && abs > 0.1:
		return models.ImpactLongTerm
	default:
		return models.ImpactNegligible
	}
}

// AdjustConfidence nudges a technical confidence by sentiment alignment.
// Sentiment below 0.5 confidence never adjusts. Aligned sentiment boosts up
// to +15; sentiment opposing the signal by more than 0.2 penalizes down to
// -10. The result stays within [0, 100].
func AdjustConfidence(technical float64, direction models.Direction, s models.TickerSentiment) float64 {
	if s.Confidence < 0.5 {
		return technical
	}

	var adjustment float64
	switch {
	case direction == models.SignalBullish && s.Score > 0:
		adjustment = math.Min(15, s.Score*s.Confidence*20)
	case direction == models.SignalBearish && s.Score < 0:
		adjustment = math.Min(15, -s.Score*s.Confidence*20)
	case direction == models.SignalBullish && s.Score < -0.2:
		adjustment = math.Max(-10, s.Score*s.Confidence*15)
	case direction == models.SignalBearish && s.Score > 0.2:
		adjustment = math.Max(-10, -s.Score*s.Confidence*15)
	}
	return util.Clamp(technical+adjustment, 0, 100)
}

// ContentHash identifies a news text for deduplication and caching.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
