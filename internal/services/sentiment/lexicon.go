package sentiment

import (
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

const fallbackConfidence = 0.3

var positiveWords = map[string]struct{}{
	"beat": {}, "beats": {}, "gain": {}, "gains": {}, "growth": {},
	"surge": {}, "surges": {}, "rally": {}, "record": {}, "strong": {},
	"upgrade": {}, "upgraded": {}, "outperform": {}, "bullish": {},
	"profit": {}, "profits": {}, "rise": {}, "rises": {}, "jump": {},
	"jumps": {}, "soar": {}, "soars": {}, "positive": {}, "exceed": {},
	"exceeds": {}, "win": {}, "wins": {}, "boost": {}, "boosts": {},
}

var negativeWords = map[string]struct{}{
	"miss": {}, "misses": {}, "loss": {}, "losses": {}, "decline": {},
	"declines": {}, "fall": {}, "falls": {}, "drop": {}, "drops": {},
	"plunge": {}, "plunges": {}, "downgrade": {}, "downgraded": {},
	"underperform": {}, "bearish": {}, "weak": {}, "warning": {},
	"lawsuit": {}, "probe": {}, "investigation": {}, "recall": {},
	"cut": {}, "cuts": {}, "negative": {}, "slump": {}, "slumps": {},
	"crash": {}, "bankruptcy": {}, "layoffs": {},
}

// fallbackSignal scores text with a word-count lexicon when the classifier
// is unavailable. Confidence is fixed low so the aggregate discounts it.
func fallbackSignal(text string, cc service.ClassifyContext) models.SentimentSignal {
	var pos, neg int
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()")
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	var score float64
	if total := pos + neg; total > 0 {
		score = float64(pos-neg) / float64(total)
	}

	return models.SentimentSignal{
		Timestamp:  time.Now().UTC(),
		Ticker:     cc.Ticker,
		Source:     cc.Source,
		Score:      score,
		Confidence: fallbackConfidence,
		KeyTopics:  []string{"fallback_analysis"},
		Impact:     models.ImpactNegligible,
		Reasoning:  "lexicon fallback, classifier unavailable",
	}
}
