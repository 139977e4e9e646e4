// Package reports assembles and renders the per-tenant report artifacts.
package reports

import (
	"sort"
	"time"

	"github.com/avidela/folio/internal/contracts"
)

// topMovers caps the gainers/losers lists.
const topMovers = 3

// Assemble builds the TenantReport from valued holdings and computed
// metrics: total value, per-holding allocation percentages, and the
// gainers/losers ordering. The holdings slice is sorted in place by
// position value, largest first.
func Assemble(tenantID, period string, holdings []contracts.ValuedHolding, metrics contracts.Metrics, generatedAt time.Time) *contracts.TenantReport {
	total := 0.0
	for _, h := range holdings {
		total += h.PositionValue
	}

	for i := range holdings {
		if total > 0 {
			holdings[i].AllocationPct = holdings[i].PositionValue / total * 100
		}
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].PositionValue > holdings[j].PositionValue
	})

	return &contracts.TenantReport{
		TenantID:    tenantID,
		GeneratedAt: generatedAt,
		Period:      period,
		TotalValue:  total,
		Holdings:    holdings,
		Metrics:     metrics,
		Gainers:     movers(holdings, true),
		Losers:      movers(holdings, false),
	}
}

// movers returns up to topMovers symbols ordered by daily change, gainers
// needing a positive change and losers a negative one.
func movers(holdings []contracts.ValuedHolding, gainers bool) []string {
	sorted := make([]contracts.ValuedHolding, len(holdings))
	copy(sorted, holdings)

	sort.SliceStable(sorted, func(i, j int) bool {
		if gainers {
			return sorted[i].ChangePercent > sorted[j].ChangePercent
		}
		return sorted[i].ChangePercent < sorted[j].ChangePercent
	})

	var symbols []string
	for _, h := range sorted {
		if gainers && h.ChangePercent <= 0 {
			break
		}
		if !gainers && h.ChangePercent >= 0 {
			break
		}
		symbols = append(symbols, h.Resolved)
		if len(symbols) == topMovers {
			break
		}
	}
	return symbols
}
