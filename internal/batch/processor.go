// Package batch drives one run of the portfolio pipeline: per-tenant
// processing plus orchestration across all tenants.
package batch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/avidela/folio/internal/analytics"
	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/internal/marketdata"
	"github.com/avidela/folio/internal/publish"
	"github.com/avidela/folio/internal/reports"
	"github.com/avidela/folio/pkg/logger"
)

// Processor runs the full pipeline for a single tenant: fetch holdings,
// resolve symbols, value, compute metrics, render and publish. It holds no
// per-tenant state; one instance serves all workers.
type Processor struct {
	repo         contracts.HoldingsRepository
	resolver     *marketdata.Resolver
	data         contracts.MarketData
	renderer     reports.Renderer
	publisher    contracts.ArtifactPublisher
	logos        *reports.LogoResolver
	riskFreeRate float64
	logger       *logger.Logger
	now          func() time.Time
}

// NewProcessor wires a tenant processor. logos may be nil to disable logo
// resolution.
func NewProcessor(
	repo contracts.HoldingsRepository,
	resolver *marketdata.Resolver,
	data contracts.MarketData,
	renderer reports.Renderer,
	publisher contracts.ArtifactPublisher,
	logos *reports.LogoResolver,
	riskFreeRate float64,
	log *logger.Logger,
) *Processor {
	return &Processor{
		repo:         repo,
		resolver:     resolver,
		data:         data,
		renderer:     renderer,
		publisher:    publisher,
		logos:        logos,
		riskFreeRate: riskFreeRate,
		logger:       log.WithField("module", "processor"),
		now:          time.Now,
	}
}

// Process runs one tenant end to end and always returns an outcome, never
// panics. Errors and panics inside the pipeline surface as StatusFailed;
// they must not reach the orchestrator.
func (p *Processor) Process(ctx context.Context, tenantID, period string, skipEmpty bool) (outcome contracts.RunOutcome) {
	start := p.now()
	log := p.logger.WithField("tenant_id", tenantID)

	outcome = contracts.RunOutcome{TenantID: tenantID}
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = contracts.StatusFailed
			outcome.Error = fmt.Sprintf("panic: %v", r)
			log.Errorf("Tenant processing panicked: %v", r)
		}
		outcome.Duration = p.now().Sub(start)
	}()

	holdings, err := p.repo.GetHoldings(ctx, tenantID)
	if err != nil {
		outcome.Status = contracts.StatusFailed
		outcome.Error = fmt.Sprintf("failed to fetch holdings: %v", err)
		log.WithError(err).Error("Holdings fetch failed")
		return outcome
	}

	if len(holdings) == 0 && skipEmpty {
		outcome.Status = contracts.StatusSkippedEmpty
		log.Info("Tenant has no holdings, skipping")
		return outcome
	}

	valued, charts, dropped := p.resolveHoldings(ctx, log, holdings, period)
	outcome.DroppedCount = dropped
	outcome.HoldingsCount = len(valued)

	if len(valued) == 0 {
		outcome.Status = contracts.StatusSkippedEmpty
		log.Info("No resolvable holdings, skipping")
		return outcome
	}

	series := analytics.PortfolioSeries(positions(valued, charts))
	metrics := analytics.Compute(series, p.riskFreeRate)

	report := reports.Assemble(tenantID, period, valued, metrics, p.now().UTC())
	report.Artifacts = expectedRefs(tenantID, charts)

	artifacts, err := p.renderer.Render(report, charts)
	if err != nil {
		outcome.Status = contracts.StatusFailed
		outcome.Error = fmt.Sprintf("render failed: %v", err)
		log.WithError(err).Error("Report rendering failed")
		return outcome
	}

	for _, artifact := range artifacts {
		if _, err := p.publisher.Put(ctx, tenantID, artifact.Name, artifact.Data); err != nil {
			// Undelivered report fails the tenant even though metrics
			// were computed.
			outcome.Status = contracts.StatusFailed
			outcome.Error = fmt.Sprintf("publish failed for %s: %v", artifact.Name, err)
			log.WithError(err).WithField("artifact", artifact.Name).Error("Artifact publish failed")
			return outcome
		}
	}

	if dropped > 0 {
		outcome.Status = contracts.StatusPartial
	} else {
		outcome.Status = contracts.StatusSuccess
	}

	log.WithFields(map[string]interface{}{
		"status":   outcome.Status,
		"holdings": outcome.HoldingsCount,
		"dropped":  dropped,
	}).Info("Tenant processed")

	return outcome
}

// resolveHoldings runs two-phase resolution and valuation over every
// holding. Unresolvable holdings are dropped with a log line; they degrade
// the tenant, never fail it.
func (p *Processor) resolveHoldings(ctx context.Context, log *logger.Logger, holdings []contracts.Holding, period string) ([]contracts.ValuedHolding, map[string]*contracts.TimeSeries, int) {
	var valued []contracts.ValuedHolding
	charts := make(map[string]*contracts.TimeSeries)
	dropped := 0

	for _, h := range holdings {
		res, err := p.resolver.Resolve(ctx, h.RawSymbol)
		if err != nil {
			dropped++
			log.WithFields(map[string]interface{}{
				"raw_symbol": h.RawSymbol,
				"reason":     err.Error(),
			}).Warn("Holding dropped")
			continue
		}

		qty := h.Quantity.InexactFloat64()
		vh := contracts.ValuedHolding{
			Symbol:        res.Symbol,
			Resolved:      res.Resolved,
			Quantity:      h.Quantity,
			UnitPrice:     res.Quote.Price,
			PositionValue: res.Quote.Price * qty,
			ChangePercent: res.Quote.ChangePercent,
		}
		if p.logos != nil {
			vh.LogoURL = p.logos.Resolve(ctx, res.Resolved, "")
		}
		valued = append(valued, vh)

		if _, ok := charts[res.Resolved]; !ok {
			series, err := p.data.History(ctx, res.Resolved, period)
			if err != nil {
				// Valuation still stands on the quote; only the chart
				// and metric contribution are lost.
				log.WithError(err).WithField("symbol", res.Resolved).Warn("History unavailable")
			} else {
				charts[res.Resolved] = series
			}
		}
	}

	return valued, charts, dropped
}

func positions(valued []contracts.ValuedHolding, charts map[string]*contracts.TimeSeries) []analytics.Position {
	var out []analytics.Position
	for _, vh := range valued {
		if series, ok := charts[vh.Resolved]; ok {
			out = append(out, analytics.Position{Series: series, Quantity: vh.Quantity.InexactFloat64()})
		}
	}
	return out
}

// expectedRefs pre-computes the artifact refs listed inside report.json.
// Keys are deterministic, so they are known before the upload happens.
func expectedRefs(tenantID string, charts map[string]*contracts.TimeSeries) []contracts.ArtifactRef {
	names := []string{"report.json"}
	for symbol, series := range charts {
		if series != nil && len(series.Points) > 0 {
			names = append(names, fmt.Sprintf("%s_chart.json", symbol))
		}
	}
	sort.Strings(names[1:])

	refs := make([]contracts.ArtifactRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, contracts.ArtifactRef{
			Name: name,
			Key:  fmt.Sprintf("%s/%s", tenantID, publish.SanitizeKey(name)),
		})
	}
	return refs
}
