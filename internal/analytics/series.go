package analytics

import (
	"sort"
	"time"

	"github.com/avidela/folio/internal/contracts"
)

// Position pairs one resolved holding's price history with its quantity,
// for portfolio-level aggregation.
type Position struct {
	Series   *contracts.TimeSeries
	Quantity float64
}

// PortfolioSeries aggregates per-symbol histories into one daily portfolio
// valuation series. Observations are aligned on calendar day; symbols
// missing a day carry their last known close forward (and their first close
// backward for days before their history starts), so one sparse series
// cannot poke holes in the whole portfolio.
func PortfolioSeries(positions []Position) []float64 {
	days := collectDays(positions)
	if len(days) == 0 {
		return nil
	}

	values := make([]float64, len(days))
	for _, pos := range positions {
		if pos.Series == nil || len(pos.Series.Points) == 0 {
			continue
		}

		points := pos.Series.Points
		idx := 0
		last := points[0].Close
		for i, day := range days {
			for idx < len(points) && !dayOf(points[idx].Time).After(day) {
				last = points[idx].Close
				idx++
			}
			values[i] += last * pos.Quantity
		}
	}

	return values
}

func collectDays(positions []Position) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, pos := range positions {
		if pos.Series == nil {
			continue
		}
		for _, p := range pos.Series.Points {
			seen[dayOf(p.Time)] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
