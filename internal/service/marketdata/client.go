package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/ratelimit"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

const (
	fundamentalsTTL = time.Hour
	rateKey         = "marketdata"
)

// Client fetches bars, fundamentals and news from the market data provider's
// REST API. Implements BarSource, FundamentalsSource and NewsSource.
// Requests share a token-bucket rate limit; fundamentals are cached per
// ticker since they move slowly.
type Client struct {
	http     *xhttp.Client
	baseURL  string
	apiKey   string
	limiter  *ratelimit.Limiter
	rateCap  float64
	rateRef  float64
	cache    *icache.TTLCache
	l        *applogger.Logger
}

type Option func(*Client)

// WithRateLimit sets the token bucket capacity and refill per second.
func WithRateLimit(capacity, refillPerSec float64) Option {
	return func(c *Client) {
		c.rateCap = capacity
		c.rateRef = refillPerSec
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

func New(httpClient *xhttp.Client, baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: ratelimit.New(),
		rateCap: 10,
		rateRef: 5,
		cache:   icache.NewTTLCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type barDTO struct {
	T int64   `json:"t"` // unix ms
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

type barsResponse struct {
	Symbol string   `json:"symbol"`
	Bars   []barDTO `json:"bars"`
}

// Bars fetches historical OHLCV bars, oldest first. An empty result maps to
// ErrDataUnavailable so the pipeline skips the ticker cleanly.
func (c *Client) Bars(ctx context.Context, ticker, period, interval string) ([]models.Bar, error) {
	if err := c.waitForToken(ctx); err != nil {
		return nil, err
	}

	var resp barsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/bars",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		QueryParams: map[string][]string{
			"symbol":   {ticker},
			"period":   {period},
			"interval": {interval},
		},
	}, &resp)
	if err != nil {
		if c.l != nil {
			c.l.Warn("bars fetch failed",
				applogger.String("ticker", ticker),
				applogger.Error(err))
		}
		return nil, fmt.Errorf("fetch bars %s: %w", ticker, err)
	}
	if len(resp.Bars) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, repository.ErrDataUnavailable)
	}

	bars := make([]models.Bar, len(resp.Bars))
	for i, b := range resp.Bars {
		bars[i] = models.Bar{
			Timestamp: time.UnixMilli(b.T).UTC(),
			Open:      b.O,
			High:      b.H,
			Low:       b.L,
			Close:     b.C,
			Volume:    b.V,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

type fundamentalsDTO struct {
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	MarketCap float64 `json:"market_cap"`
	AvgVolume float64 `json:"avg_volume"`
	Beta      float64 `json:"beta"`
	PERatio   float64 `json:"pe_ratio"`
}

// Fundamentals fetches the per-ticker snapshot, serving a cached copy for an
// hour. Failures return zero-value defaults, not an error; fundamentals only
// gate screening and must never fail a ticker.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (models.Fundamentals, error) {
	key := "fundamentals:" + ticker
	if v, ok := c.cache.Get(key); ok {
		if f, ok := v.(models.Fundamentals); ok {
			return f, nil
		}
	}

	if err := c.waitForToken(ctx); err != nil {
		return models.Fundamentals{}, nil
	}

	var dto fundamentalsDTO
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/fundamentals",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		QueryParams: map[string][]string{"symbol": {ticker}},
	}, &dto)
	if err != nil {
		if c.l != nil {
			c.l.Debug("fundamentals fetch failed, using defaults",
				applogger.String("ticker", ticker),
				applogger.Error(err))
		}
		return models.Fundamentals{Name: ticker, Sector: "Unknown"}, nil
	}

	f := models.Fundamentals{
		Name:      dto.Name,
		Sector:    dto.Sector,
		Industry:  dto.Industry,
		MarketCap: dto.MarketCap,
		AvgVolume: dto.AvgVolume,
		Beta:      dto.Beta,
		PERatio:   dto.PERatio,
	}
	c.cache.Set(key, f, fundamentalsTTL)
	return f, nil
}

type newsItemDTO struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt int64  `json:"published_at"` // unix seconds
}

type newsResponse struct {
	Items []newsItemDTO `json:"items"`
}

// RecentNews fetches news published in the last hoursBack hours.
func (c *Client) RecentNews(ctx context.Context, ticker string, hoursBack int) ([]models.NewsItem, error) {
	if err := c.waitForToken(ctx); err != nil {
		return nil, err
	}

	var resp newsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/news",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"hours":  {fmt.Sprintf("%d", hoursBack)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch news %s: %w", ticker, err)
	}

	items := make([]models.NewsItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, models.NewsItem{
			Ticker:      ticker,
			Title:       it.Title,
			Summary:     it.Summary,
			Source:      it.Source,
			URL:         it.URL,
			PublishedAt: time.Unix(it.PublishedAt, 0).UTC(),
		})
	}
	return items, nil
}

// waitForToken blocks until the rate limiter admits the call or the context
// ends.
func (c *Client) waitForToken(ctx context.Context) error {
	for !c.limiter.Allow(rateKey, c.rateCap, c.rateRef) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
