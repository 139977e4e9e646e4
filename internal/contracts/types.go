// Package contracts defines the data types and boundary interfaces shared
// across the pipeline. It has no dependencies on other internal packages so
// every layer can import it.
package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one line item of a tenant's portfolio, exactly as stored.
// Immutable input to symbol resolution.
type Holding struct {
	TenantID  string          `json:"tenant_id"`
	RawSymbol string          `json:"raw_symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SymbolSource identifies which normalization rule produced a symbol.
type SymbolSource string

const (
	SourceUnchanged   SymbolSource = "UNCHANGED"
	SourceKnownMap    SymbolSource = "KNOWN_MAP"
	SourcePatternRule SymbolSource = "PATTERN_RULE"
	SourceSuffixStrip SymbolSource = "SUFFIX_STRIP"
)

// NormalizedSymbol is the result of normalizing one raw ticker. Produced
// once per holding per run, never persisted.
type NormalizedSymbol struct {
	Raw        string       `json:"raw"`
	Normalized string       `json:"normalized"`
	Source     SymbolSource `json:"source"`
	Valid      bool         `json:"valid"`
}

// Quote is a current price snapshot for one symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency,omitempty"`
	ShortName     string  `json:"short_name,omitempty"`
}

// Pricepoint is one (timestamp, close) observation in a history series.
type Pricepoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// TimeSeries is an ordered price history for one symbol.
type TimeSeries struct {
	Symbol string       `json:"symbol"`
	Points []Pricepoint `json:"points"`
}

// ValuedHolding is a holding after a successful market-data lookup.
type ValuedHolding struct {
	Symbol        NormalizedSymbol `json:"symbol"`
	Resolved      string           `json:"resolved"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     float64          `json:"unit_price"`
	PositionValue float64          `json:"position_value"`
	ChangePercent float64          `json:"change_percent"`
	AllocationPct float64          `json:"allocation_pct"`
	LogoURL       string           `json:"logo_url,omitempty"`
}

// Metrics holds the four portfolio risk metrics, all as fractions
// (0.05 == 5%).
type Metrics struct {
	TotalReturn float64 `json:"total_return"`
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// ArtifactRef names one published artifact and where it landed.
type ArtifactRef struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// TenantReport is the full per-tenant output of one run. Owned by the
// processor until handed to the publisher, then treated as immutable.
type TenantReport struct {
	TenantID    string          `json:"tenant_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Period      string          `json:"period"`
	TotalValue  float64         `json:"total_value"`
	Holdings    []ValuedHolding `json:"holdings"`
	Metrics     Metrics         `json:"metrics"`
	Gainers     []string        `json:"gainers,omitempty"`
	Losers      []string        `json:"losers,omitempty"`
	Artifacts   []ArtifactRef   `json:"artifacts"`
}

// RunStatus is the terminal status of one tenant in one batch run.
type RunStatus string

const (
	StatusSuccess      RunStatus = "SUCCESS"
	StatusPartial      RunStatus = "PARTIAL"
	StatusSkippedEmpty RunStatus = "SKIPPED_EMPTY"
	StatusFailed       RunStatus = "FAILED"
)

// RunOutcome records how one tenant fared in one batch run.
type RunOutcome struct {
	TenantID      string        `json:"tenant_id"`
	Status        RunStatus     `json:"status"`
	HoldingsCount int           `json:"holdings_count"`
	DroppedCount  int           `json:"dropped_count"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
}

// BatchSummary aggregates all tenant outcomes of one batch execution. It is
// the sole externally observable contract of a run.
type BatchSummary struct {
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	Period      string       `json:"period"`
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Partial     int          `json:"partial"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	Outcomes    []RunOutcome `json:"outcomes"`
}

// Count tallies one outcome into the summary counters. Callers append to
// Outcomes themselves so accumulation stays single-writer.
func (s *BatchSummary) Count(o RunOutcome) {
	s.Total++
	switch o.Status {
	case StatusSuccess:
		s.Succeeded++
	case StatusPartial:
		s.Partial++
	case StatusSkippedEmpty:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
