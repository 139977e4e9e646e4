package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/internal/symbols"
	"github.com/avidela/folio/pkg/logger"
)

// fakeMarketData serves quotes/history from in-memory maps and records the
// symbols it was asked about.
type fakeMarketData struct {
	quotes  map[string]*contracts.Quote
	history map[string]*contracts.TimeSeries
	asked   []string
}

func (f *fakeMarketData) Quote(_ context.Context, symbol string) (*contracts.Quote, error) {
	f.asked = append(f.asked, symbol)
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, contracts.ErrNotFound
}

func (f *fakeMarketData) History(_ context.Context, symbol, _ string) (*contracts.TimeSeries, error) {
	if ts, ok := f.history[symbol]; ok {
		return ts, nil
	}
	return nil, contracts.ErrNotFound
}

func newResolver(data contracts.MarketData) *Resolver {
	return NewResolver(symbols.New(nil), data, "5d", logger.NewNop())
}

func TestResolve_RawAcceptedUnmodified(t *testing.T) {
	data := &fakeMarketData{quotes: map[string]*contracts.Quote{
		"AAPL": {Symbol: "AAPL", Price: 187.0},
	}}

	res, err := newResolver(data).Resolve(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Resolved)
	assert.InDelta(t, 187.0, res.Quote.Price, 1e-9)
	// Raw accepted, so normalization never influenced the result
	assert.Equal(t, []string{"AAPL"}, data.asked)
}

func TestResolve_NormalizedFallback(t *testing.T) {
	// Provider only knows the hyphenated crypto form
	data := &fakeMarketData{quotes: map[string]*contracts.Quote{
		"BTC-USD": {Symbol: "BTC-USD", Price: 64000.0},
	}}

	res, err := newResolver(data).Resolve(context.Background(), "BTCUSD")
	require.NoError(t, err)

	assert.Equal(t, "BTC-USD", res.Resolved)
	assert.Equal(t, contracts.SourceKnownMap, res.Symbol.Source)
}

func TestResolve_HistoryConfirmsExistence(t *testing.T) {
	// No quote payload, but history has points: existence confirmed and
	// the latest close becomes the price.
	data := &fakeMarketData{history: map[string]*contracts.TimeSeries{
		"VOD.L": {Symbol: "VOD.L", Points: []contracts.Pricepoint{
			{Time: time.Now().Add(-48 * time.Hour), Close: 70.1},
			{Time: time.Now().Add(-24 * time.Hour), Close: 71.5},
		}},
	}}

	res, err := newResolver(data).Resolve(context.Background(), "VOD.L")
	require.NoError(t, err)

	assert.Equal(t, "VOD.L", res.Resolved)
	assert.InDelta(t, 71.5, res.Quote.Price, 1e-9)
}

func TestResolve_DoubleMiss(t *testing.T) {
	data := &fakeMarketData{}

	_, err := newResolver(data).Resolve(context.Background(), "ZZZZZZ.XQ")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrSymbolNotFound)
}

func TestResolve_SyntacticallyInvalidBothWays(t *testing.T) {
	data := &fakeMarketData{}

	_, err := newResolver(data).Resolve(context.Background(), "-$$-")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrSymbolInvalid)
	// Provider never queried for garbage
	assert.Empty(t, data.asked)
}

func TestResolve_IndexTicker(t *testing.T) {
	data := &fakeMarketData{quotes: map[string]*contracts.Quote{
		"^SPX": {Symbol: "^SPX", Price: 5000.0},
	}}

	res, err := newResolver(data).Resolve(context.Background(), "^SPX")
	require.NoError(t, err)
	assert.Equal(t, "^SPX", res.Resolved)
}
