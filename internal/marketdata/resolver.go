package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/internal/symbols"
	"github.com/avidela/folio/pkg/logger"
)

// Resolution is the outcome of a successful symbol lookup.
type Resolution struct {
	Symbol   contracts.NormalizedSymbol
	Resolved string
	Quote    *contracts.Quote
}

// Resolver validates holdings against the provider in two phases: the raw
// symbol first (so a symbol the provider already accepts is never
// rewritten), the normalized form as fallback.
type Resolver struct {
	normalizer *symbols.Normalizer
	data       contracts.MarketData
	lookback   string
	logger     *logger.Logger
}

// NewResolver creates a resolver. lookback is the bounded history range
// used as the existence fallback when a quote carries no price (e.g. "5d").
func NewResolver(normalizer *symbols.Normalizer, data contracts.MarketData, lookback string, log *logger.Logger) *Resolver {
	return &Resolver{
		normalizer: normalizer,
		data:       data,
		lookback:   lookback,
		logger:     log.WithField("module", "resolver"),
	}
}

// Resolve maps a raw holding symbol to a provider-confirmed symbol plus its
// quote. Errors wrap contracts.ErrSymbolInvalid or
// contracts.ErrSymbolNotFound; both mean the holding is dropped, never that
// the tenant failed.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	ns := r.normalizer.Normalize(raw)

	// Phase 1: the user's original symbol, whenever it is syntactically
	// acceptable. Preserves traceability and avoids needless rewriting.
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if symbols.IsValid(cleaned) {
		if quote, ok := r.confirm(ctx, cleaned); ok {
			return &Resolution{Symbol: ns, Resolved: cleaned, Quote: quote}, nil
		}
	}

	// Phase 2: the normalized form, if it differs and is valid.
	if !ns.Valid {
		return nil, fmt.Errorf("%q: %w", raw, contracts.ErrSymbolInvalid)
	}
	if ns.Normalized != cleaned {
		if quote, ok := r.confirm(ctx, ns.Normalized); ok {
			return &Resolution{Symbol: ns, Resolved: ns.Normalized, Quote: quote}, nil
		}
	}

	return nil, fmt.Errorf("%q (normalized %q): %w", raw, ns.Normalized, contracts.ErrSymbolNotFound)
}

// confirm checks provider existence: a quote with a price, or at least one
// point in a bounded lookback history.
func (r *Resolver) confirm(ctx context.Context, symbol string) (*contracts.Quote, bool) {
	quote, err := r.data.Quote(ctx, symbol)
	if err == nil {
		return quote, true
	}
	if !errors.Is(err, contracts.ErrNotFound) {
		r.logger.WithError(err).WithField("symbol", symbol).Warn("Quote lookup failed")
	}

	series, err := r.data.History(ctx, symbol, r.lookback)
	if err != nil || len(series.Points) == 0 {
		return nil, false
	}

	// Existence confirmed through history alone: synthesize a quote from
	// the latest close.
	last := series.Points[len(series.Points)-1]
	return &contracts.Quote{Symbol: symbol, Price: last.Close}, true
}
