package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/logger"
)

// TenantProcessor is the per-tenant unit of work the orchestrator drives.
type TenantProcessor interface {
	Process(ctx context.Context, tenantID, period string, skipEmpty bool) contracts.RunOutcome
}

// Orchestrator fans a batch run out over a bounded worker pool. Tenants are
// independent: one failure never aborts the batch, and outcome aggregation
// happens in a single reader goroutine.
type Orchestrator struct {
	repo      contracts.HoldingsRepository
	processor TenantProcessor
	workers   int
	logger    *logger.Logger
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator with the given worker count.
// Workers below 1 are clamped to 1.
func NewOrchestrator(repo contracts.HoldingsRepository, processor TenantProcessor, workers int, log *logger.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		repo:      repo,
		processor: processor,
		workers:   workers,
		logger:    log.WithField("module", "orchestrator"),
		now:       time.Now,
	}
}

// RunBatch processes every tenant (or just tenantID when non-empty) and
// returns the aggregated summary. The only error case is failing to
// enumerate tenants; everything after that is captured per tenant.
func (o *Orchestrator) RunBatch(ctx context.Context, period string, skipEmpty bool, tenantID string) (*contracts.BatchSummary, error) {
	startedAt := o.now().UTC()

	var tenants []string
	if tenantID != "" {
		tenants = []string{tenantID}
	} else {
		var err error
		tenants, err = o.repo.ListTenants(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate tenants: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"tenants": len(tenants),
		"workers": o.workers,
		"period":  period,
	}).Info("Batch run started")

	jobs := make(chan string, len(tenants))
	results := make(chan contracts.RunOutcome, len(tenants))

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tenant := range jobs {
				select {
				case <-ctx.Done():
					// Cancelled mid-batch: remaining tenants are marked
					// failed without being started, in-flight ones finish.
					results <- contracts.RunOutcome{
						TenantID: tenant,
						Status:   contracts.StatusFailed,
						Error:    ctx.Err().Error(),
					}
				default:
					results <- o.processor.Process(ctx, tenant, period, skipEmpty)
				}
			}
		}()
	}

	for _, tenant := range tenants {
		jobs <- tenant
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single-writer aggregation: only this goroutine touches the summary.
	summary := &contracts.BatchSummary{
		StartedAt: startedAt,
		Period:    period,
	}
	for outcome := range results {
		summary.Count(outcome)
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	summary.CompletedAt = o.now().UTC()

	o.logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"partial":   summary.Partial,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
		"duration":  summary.CompletedAt.Sub(summary.StartedAt),
	}).Info("Batch run completed")

	return summary, nil
}
