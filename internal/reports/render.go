package reports

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/avidela/folio/internal/contracts"
)

// Artifact is one rendered output blob, not yet published.
type Artifact struct {
	Name string
	Data []byte
}

// Renderer turns a report plus per-symbol chart series into artifacts. The
// rendering engine is replaceable; the pipeline only depends on this
// contract.
type Renderer interface {
	Render(report *contracts.TenantReport, charts map[string]*contracts.TimeSeries) ([]Artifact, error)
}

// JSONRenderer emits report.json plus one {SYMBOL}_chart.json per resolved
// symbol. A frontend or chart service consumes these downstream.
type JSONRenderer struct{}

// NewJSONRenderer creates the default renderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type chartDocument struct {
	Symbol string                 `json:"symbol"`
	Points []contracts.Pricepoint `json:"points"`
}

// Render produces the report document first, then charts in deterministic
// per-symbol files.
func (r *JSONRenderer) Render(report *contracts.TenantReport, charts map[string]*contracts.TimeSeries) ([]Artifact, error) {
	reportData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	artifacts := []Artifact{{Name: "report.json", Data: reportData}}

	symbols := make([]string, 0, len(charts))
	for symbol := range charts {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		series := charts[symbol]
		if series == nil || len(series.Points) == 0 {
			continue
		}

		chartData, err := json.Marshal(chartDocument{Symbol: symbol, Points: series.Points})
		if err != nil {
			return nil, fmt.Errorf("failed to render chart for %s: %w", symbol, err)
		}

		artifacts = append(artifacts, Artifact{
			Name: fmt.Sprintf("%s_chart.json", symbol),
			Data: chartData,
		})
	}

	return artifacts, nil
}
