package coingecko

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"OracleAgent/internal/domain/models"
	dsvc "OracleAgent/internal/domain/service"
	xhttp "OracleAgent/pkg/http"
	applogger "OracleAgent/pkg/logger"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

type quote struct {
	USD          *float64 `json:"usd"`
	USD24hVol    *float64 `json:"usd_24h_vol"`
	USD24hChange *float64 `json:"usd_24h_change"`
	USDMarketCap *float64 `json:"usd_market_cap"`
}

// Client implements service.MarketFetcher against the CoinGecko simple price endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	fees    dsvc.FeeEstimator
	log     *applogger.Logger
	now     func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithAPIKey sets the demo API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a fetcher. The http client is shared so connections are reused across calls.
func New(baseURL string, httpClient *xhttp.Client, fees dsvc.FeeEstimator, l *applogger.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if l == nil {
		l = applogger.Nop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		fees:    fees,
		log:     l.With(applogger.String("component", "coingecko")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues one price request and builds a snapshot with fee estimates attached.
func (c *Client) Fetch(ctx context.Context) (*models.MarketSnapshot, error) {
	query := url.Values{
		"ids":                 {"bitcoin"},
		"vs_currencies":       {"usd"},
		"include_24hr_vol":    {"true"},
		"include_24hr_change": {"true"},
		"include_market_cap":  {"true"},
	}
	req := &xhttp.Request{URL: c.baseURL + "/simple/price", Query: query}
	if c.apiKey != "" {
		req.Headers = map[string]string{"x-cg-demo-api-key": c.apiKey}
	}

	var body map[string]quote
	if err := c.http.GetJSON(ctx, req, &body); err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			c.log.Error("price api returned non-success status",
				applogger.Int("status", se.Code),
				applogger.String("body", se.Body),
			)
			return nil, fmt.Errorf("%w: price api status %d", models.ErrUpstreamUnavailable, se.Code)
		}
		c.log.Error("price api request failed", applogger.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
	}

	q, ok := body["bitcoin"]
	if !ok {
		c.log.Error("price api payload missing bitcoin entry")
		return nil, fmt.Errorf("%w: payload missing bitcoin entry", models.ErrServiceUnavailable)
	}
	if q.USD == nil || *q.USD <= 0 || math.IsNaN(*q.USD) || math.IsInf(*q.USD, 0) {
		c.log.Error("price api payload has no usable price")
		return nil, fmt.Errorf("%w: missing or non-positive price", models.ErrServiceUnavailable)
	}

	snap := &models.MarketSnapshot{
		Price:          *q.USD,
		Timestamp:      c.now().UTC(),
		Volume24h:      q.USD24hVol,
		PriceChange24h: q.USD24hChange,
		MarketCap:      q.USDMarketCap,
	}
	snap.Volatility = Volatility(snap.Change24h())
	if c.fees != nil {
		snap.NetworkFees = c.fees.Estimate(ctx)
	}
	return snap, nil
}

// Volatility is the absolute 24h percentage change expressed as a fraction.
func Volatility(priceChange24h float64) float64 {
	return math.Abs(priceChange24h) / 100
}
