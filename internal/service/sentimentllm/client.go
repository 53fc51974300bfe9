package sentimentllm

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/util"
)

// Client implements the sentiment Classifier against the model service's
// HTTP API. Errors surface to the caller, which degrades to the lexicon
// fallback; the client never fabricates a score.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	model   string
}

func New(httpClient *xhttp.Client, baseURL, apiKey, model string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type classifyRequest struct {
	Model            string `json:"model"`
	Text             string `json:"text"`
	Ticker           string `json:"ticker"`
	Sector           string `json:"sector"`
	MarketConditions string `json:"market_conditions"`
	VolatilityRegime string `json:"volatility_regime"`
}

type classifyResponse struct {
	SentimentScore float64  `json:"sentiment_score"`
	Confidence     float64  `json:"confidence"`
	KeyTopics      []string `json:"key_topics"`
	MarketImpact   string   `json:"market_impact"`
	Reasoning      string   `json:"reasoning"`
}

func (c *Client) Classify(ctx context.Context, text string, cc service.ClassifyContext) (models.SentimentSignal, error) {
	var resp classifyResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/v1/classify",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
			"Content-Type":  "application/json",
		},
		Body: classifyRequest{
			Model:            c.model,
			Text:             text,
			Ticker:           cc.Ticker,
			Sector:           cc.Sector,
			MarketConditions: cc.MarketConditions,
			VolatilityRegime: cc.VolatilityRegime,
		},
	}, &resp)
	if err != nil {
		return models.SentimentSignal{}, fmt.Errorf("classify sentiment: %w", err)
	}

	return models.SentimentSignal{
		Timestamp:  time.Now().UTC(),
		Ticker:     cc.Ticker,
		Source:     cc.Source,
		Score:      util.Clamp(resp.SentimentScore, -1, 1),
		Confidence: util.Clamp(resp.Confidence, 0, 1),
		KeyTopics:  resp.KeyTopics,
		Impact:     parseImpact(resp.MarketImpact),
		Reasoning:  resp.Reasoning,
	}, nil
}

func parseImpact(s string) models.Impact {
	switch models.Impact(s) {
	case models.ImpactImmediate, models.ImpactShortTerm, models.ImpactLongTerm:
		return models.Impact(s)
	default:
		return models.ImpactNegligible
	}
}
