package contracts

import (
	"context"
	"errors"
)

// Sentinel errors for the symbol resolution path.
var (
	// ErrNotFound is returned by the market data gateway when a symbol
	// does not exist or the provider payload is effectively empty.
	ErrNotFound = errors.New("symbol not found")

	// ErrSymbolInvalid marks a symbol that fails syntactic validation.
	ErrSymbolInvalid = errors.New("symbol syntactically invalid")

	// ErrSymbolNotFound marks a holding whose raw and normalized forms
	// were both rejected by the provider.
	ErrSymbolNotFound = errors.New("symbol rejected in both raw and normalized form")
)

// HoldingsRepository reads tenants and their holdings from the relational
// store. Both calls read fresh data; nothing is cached across runs.
type HoldingsRepository interface {
	ListTenants(ctx context.Context) ([]string, error)
	GetHoldings(ctx context.Context, tenantID string) ([]Holding, error)
}

// MarketData looks up quotes and price history. Timeouts and NotFound are
// expected, not exceptional.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	History(ctx context.Context, symbol, period string) (*TimeSeries, error)
}

// ArtifactPublisher stores one artifact at a tenant-scoped key. Writes are
// idempotent overwrites.
type ArtifactPublisher interface {
	Put(ctx context.Context, tenantID, name string, data []byte) (ArtifactRef, error)
}

// BatchRunner executes one batch over all tenants (or a single tenant when
// tenantID is non-empty).
type BatchRunner interface {
	RunBatch(ctx context.Context, period string, skipEmpty bool, tenantID string) (*BatchSummary, error)
}
