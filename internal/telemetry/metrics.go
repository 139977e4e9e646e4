// Package telemetry exposes Prometheus metrics for batch runs.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avidela/folio/internal/contracts"
)

// Metrics holds the batch-run instruments. One instance per process,
// registered on the default registry.
type Metrics struct {
	runsTotal       prometheus.Counter
	runDuration     prometheus.Histogram
	tenantOutcomes  *prometheus.CounterVec
	holdingsDropped prometheus.Counter
}

// New registers and returns the batch metrics.
func New() *Metrics {
	return &Metrics{
		runsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Completed batch runs.",
		}),
		runDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "folio",
			Subsystem: "batch",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one batch run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		tenantOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "batch",
			Name:      "tenant_outcomes_total",
			Help:      "Per-tenant outcomes by status.",
		}, []string{"status"}),
		holdingsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "batch",
			Name:      "holdings_dropped_total",
			Help:      "Holdings dropped because no symbol form resolved.",
		}),
	}
}

// ObserveRun records one completed batch summary.
func (m *Metrics) ObserveRun(summary *contracts.BatchSummary) {
	if summary == nil {
		return
	}

	m.runsTotal.Inc()
	m.runDuration.Observe(summary.CompletedAt.Sub(summary.StartedAt).Seconds())

	for _, outcome := range summary.Outcomes {
		m.tenantOutcomes.WithLabelValues(string(outcome.Status)).Inc()
		if outcome.DroppedCount > 0 {
			m.holdingsDropped.Add(float64(outcome.DroppedCount))
		}
	}
}

// ObserveRunError records a run that failed before producing a summary.
func (m *Metrics) ObserveRunError(d time.Duration) {
	m.runsTotal.Inc()
	m.runDuration.Observe(d.Seconds())
}

// InstrumentedRunner decorates a BatchRunner with run metrics.
type InstrumentedRunner struct {
	inner   contracts.BatchRunner
	metrics *Metrics
}

// Instrument wraps a runner so every run is observed.
func Instrument(inner contracts.BatchRunner, metrics *Metrics) *InstrumentedRunner {
	return &InstrumentedRunner{inner: inner, metrics: metrics}
}

// RunBatch delegates and records the outcome.
func (r *InstrumentedRunner) RunBatch(ctx context.Context, period string, skipEmpty bool, tenantID string) (*contracts.BatchSummary, error) {
	start := time.Now()

	summary, err := r.inner.RunBatch(ctx, period, skipEmpty, tenantID)
	if err != nil {
		r.metrics.ObserveRunError(time.Since(start))
		return nil, err
	}

	r.metrics.ObserveRun(summary)
	return summary, nil
}
