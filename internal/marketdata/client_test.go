package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/httputil"
	"github.com/avidela/folio/pkg/logger"
	"github.com/avidela/folio/pkg/redis"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewNop()
	httpClient := httputil.New(log, 2*time.Second).DisableRetry()
	cache := redis.NewCache(redis.NewDisabled(), "folio")

	return NewClient(httpClient, server.URL, cache, time.Minute, log)
}

func TestQuote_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":187.45,"regularMarketChangePercent":1.2,"currency":"USD","shortName":"Apple Inc."}],"error":null}}`)
	}))

	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.InDelta(t, 187.45, quote.Price, 1e-9)
	assert.InDelta(t, 1.2, quote.ChangePercent, 1e-9)
	assert.Equal(t, "USD", quote.Currency)
}

func TestQuote_EmptyResultIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":null}}`)
	}))

	_, err := client.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestQuote_PlaceholderWithoutPriceIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"GHOST","currency":"USD"}],"error":null}}`)
	}))

	_, err := client.Quote(context.Background(), "GHOST")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestQuote_HTTPNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Quote(context.Background(), "MISSING")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestHistory_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/MSFT", r.URL.Path)
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1700000000,1700086400,1700172800],"indicators":{"quote":[{"close":[370.1,null,372.9]}]}}],"error":null}}`)
	}))

	series, err := client.History(context.Background(), "MSFT", "5d")
	require.NoError(t, err)

	// The null close is dropped
	require.Len(t, series.Points, 2)
	assert.InDelta(t, 370.1, series.Points[0].Close, 1e-9)
	assert.InDelta(t, 372.9, series.Points[1].Close, 1e-9)
	assert.True(t, series.Points[0].Time.Before(series.Points[1].Time))
}

func TestHistory_ProviderErrorIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))

	_, err := client.History(context.Background(), "DELISTED", "5d")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestHistory_AllNullClosesIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1700000000],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`)
	}))

	_, err := client.History(context.Background(), "EMPTY", "5d")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestQuote_IndexSymbolEscaped(t *testing.T) {
	var gotSymbol string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbols")
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"^SPX","regularMarketPrice":5000.0}],"error":null}}`)
	}))

	quote, err := client.Quote(context.Background(), "^SPX")
	require.NoError(t, err)
	assert.Equal(t, "^SPX", gotSymbol)
	assert.InDelta(t, 5000.0, quote.Price, 1e-9)
}
