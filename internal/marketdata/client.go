// Package marketdata talks to the external quote provider and resolves raw
// portfolio symbols against it.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/httputil"
	"github.com/avidela/folio/pkg/logger"
	"github.com/avidela/folio/pkg/redis"
)

// Client fetches quotes and price history from the provider's JSON API.
// The provider is unreliable by contract: not-found and timeouts are
// ordinary outcomes, not incidents.
type Client struct {
	http     *httputil.Client
	baseURL  string
	cache    *redis.Cache
	quoteTTL time.Duration
	logger   *logger.Logger
}

// NewClient creates a provider client. cache may be a disabled redis cache;
// lookups then always go to the network.
func NewClient(httpClient *httputil.Client, baseURL string, cache *redis.Cache, quoteTTL time.Duration, log *logger.Logger) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		cache:    cache,
		quoteTTL: quoteTTL,
		logger:   log.WithField("module", "marketdata"),
	}
}

// Quote returns the current price snapshot for a symbol. Returns
// contracts.ErrNotFound when the provider does not know the symbol or
// answers with a placeholder payload carrying no price.
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	cacheKey := redis.QuoteKey(symbol)

	var cached contracts.Quote
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("quote request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, contracts.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response: %w", err)
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote response for %s: %w", symbol, err)
	}

	if parsed.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s", symbol, parsed.QuoteResponse.Error.Description)
	}

	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, contracts.ErrNotFound
	}

	r := parsed.QuoteResponse.Result[0]
	if r.RegularMarketPrice == nil {
		// Placeholder payload without a price counts as not-found
		return nil, contracts.ErrNotFound
	}

	quote := &contracts.Quote{
		Symbol:   symbol,
		Price:    *r.RegularMarketPrice,
		Currency: r.Currency,
	}
	quote.ShortName = r.ShortName
	if r.RegularMarketChangePercent != nil {
		quote.ChangePercent = *r.RegularMarketChangePercent
	}

	if err := c.cache.Set(ctx, cacheKey, quote, c.quoteTTL); err != nil {
		c.logger.WithError(err).Warn("Failed to cache quote")
	}

	return quote, nil
}

// History returns the daily close series for a symbol over the given period
// (provider range notation, e.g. "5d", "6mo", "1y"). Returns
// contracts.ErrNotFound when the provider has no data at all.
func (c *Client) History(ctx context.Context, symbol, period string) (*contracts.TimeSeries, error) {
	cacheKey := redis.HistoryKey(symbol, period)

	var cached contracts.TimeSeries
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(period))

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("history request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, contracts.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request for %s returned status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read history response: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse history response for %s: %w", symbol, err)
	}

	if parsed.Chart.Error != nil || len(parsed.Chart.Result) == 0 {
		return nil, contracts.ErrNotFound
	}

	series := buildSeries(symbol, parsed.Chart.Result[0])
	if len(series.Points) == 0 {
		return nil, contracts.ErrNotFound
	}

	if err := c.cache.Set(ctx, cacheKey, series, redis.TTLLong); err != nil {
		c.logger.WithError(err).Warn("Failed to cache history")
	}

	return series, nil
}

// buildSeries pairs timestamps with closes, dropping null observations
// (holidays and gaps appear as nulls in the payload).
func buildSeries(symbol string, r chartResult) *contracts.TimeSeries {
	series := &contracts.TimeSeries{Symbol: symbol}

	if len(r.Indicators.Quote) == 0 {
		return series
	}

	closes := r.Indicators.Quote[0].Close
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series.Points = append(series.Points, contracts.Pricepoint{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	return series
}
