package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/logger"
)

// stubProcessor returns canned outcomes keyed by tenant id.
type stubProcessor struct {
	outcomes map[string]contracts.RunOutcome
	calls    int32
}

func (s *stubProcessor) Process(_ context.Context, tenantID, _ string, _ bool) contracts.RunOutcome {
	atomic.AddInt32(&s.calls, 1)
	if o, ok := s.outcomes[tenantID]; ok {
		return o
	}
	return contracts.RunOutcome{TenantID: tenantID, Status: contracts.StatusSuccess}
}

func TestRunBatch_AggregatesAllTenants(t *testing.T) {
	repo := &fakeRepo{tenants: []string{"t1", "t2", "t3", "t4"}}
	proc := &stubProcessor{outcomes: map[string]contracts.RunOutcome{
		"t2": {TenantID: "t2", Status: contracts.StatusFailed, Error: "boom"},
		"t3": {TenantID: "t3", Status: contracts.StatusSkippedEmpty},
		"t4": {TenantID: "t4", Status: contracts.StatusPartial},
	}}

	o := NewOrchestrator(repo, proc, 2, logger.NewNop())
	summary, err := o.RunBatch(context.Background(), "6mo", true, "")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Partial)
	assert.Len(t, summary.Outcomes, 4)
	assert.False(t, summary.CompletedAt.Before(summary.StartedAt))
}

func TestRunBatch_OneFailureDoesNotAbortOthers(t *testing.T) {
	tenants := make([]string, 50)
	for i := range tenants {
		tenants[i] = string(rune('a' + i%26))
		tenants[i] += "-tenant"
	}
	repo := &fakeRepo{tenants: tenants}
	proc := &stubProcessor{outcomes: map[string]contracts.RunOutcome{
		tenants[7]: {TenantID: tenants[7], Status: contracts.StatusFailed, Error: "down"},
	}}

	o := NewOrchestrator(repo, proc, 4, logger.NewNop())
	summary, err := o.RunBatch(context.Background(), "6mo", true, "")
	require.NoError(t, err)

	assert.Equal(t, len(tenants), summary.Total)
	assert.Len(t, summary.Outcomes, len(tenants))
	assert.Equal(t, int32(len(tenants)), atomic.LoadInt32(&proc.calls))
}

func TestRunBatch_ListTenantsFailure(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("db unreachable")}

	o := NewOrchestrator(repo, &stubProcessor{}, 2, logger.NewNop())
	_, err := o.RunBatch(context.Background(), "6mo", true, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db unreachable")
}

func TestRunBatch_SingleTenant(t *testing.T) {
	// The repository is never asked for the tenant list
	repo := &fakeRepo{listErr: errors.New("must not be called")}
	proc := &stubProcessor{}

	o := NewOrchestrator(repo, proc, 2, logger.NewNop())
	summary, err := o.RunBatch(context.Background(), "1y", true, "only-tenant")
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, "only-tenant", summary.Outcomes[0].TenantID)
	assert.Equal(t, "1y", summary.Period)
}

func TestRunBatch_CancelledContext(t *testing.T) {
	repo := &fakeRepo{tenants: []string{"t1", "t2", "t3"}}
	proc := &stubProcessor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(repo, proc, 1, logger.NewNop())
	summary, err := o.RunBatch(ctx, "6mo", true, "")
	require.NoError(t, err)

	// Every tenant still gets an outcome; unstarted ones are failed
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Failed)
	assert.Zero(t, atomic.LoadInt32(&proc.calls))
}

func TestRunBatch_ZeroWorkersClamped(t *testing.T) {
	repo := &fakeRepo{tenants: []string{"t1"}}

	o := NewOrchestrator(repo, &stubProcessor{}, 0, logger.NewNop())
	summary, err := o.RunBatch(context.Background(), "6mo", true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}
