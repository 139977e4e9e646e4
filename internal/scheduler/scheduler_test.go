package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

type fakeRunner struct {
	runs    int32
	err     error
	block   chan struct{}
	summary *contracts.BatchSummary
}

func (f *fakeRunner) RunBatch(context.Context, string, bool, string) (*contracts.BatchSummary, error) {
	atomic.AddInt32(&f.runs, 1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &contracts.BatchSummary{Total: 1, Succeeded: 1}, nil
}

func marketOpen(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(2026, 3, 2, 11, 0, 0, 0, loc) // Monday 11:00
}

func marketClosed(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(2026, 3, 1, 11, 0, 0, 0, loc) // Sunday
}

func newScheduler(runner contracts.BatchRunner, clock Clock) *Scheduler {
	return New(runner, Config{
		TickInterval: 15 * time.Minute,
		Window:       NewYorkSession(),
		Period:       "6mo",
		SkipEmpty:    true,
	}, clock, logger.NewNop())
}

func TestTick_RunsWhenMarketOpen(t *testing.T) {
	clock := &fakeClock{now: marketOpen(t)}
	runner := &fakeRunner{}
	s := newScheduler(runner, clock)

	s.Tick(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.runs))
	require.NotNil(t, s.LastSummary())
	assert.Equal(t, 1, s.LastSummary().Succeeded)
}

func TestTick_SkipsWhenMarketClosed(t *testing.T) {
	clock := &fakeClock{now: marketClosed(t)}
	runner := &fakeRunner{}
	s := newScheduler(runner, clock)

	s.Tick(context.Background())

	assert.Zero(t, atomic.LoadInt32(&runner.runs))
	assert.Nil(t, s.LastSummary())
}

func TestTick_SkipsWhileRunInProgress(t *testing.T) {
	clock := &fakeClock{now: marketOpen(t)}
	runner := &fakeRunner{block: make(chan struct{})}
	s := newScheduler(runner, clock)

	done := make(chan struct{})
	go func() {
		s.Tick(context.Background())
		close(done)
	}()

	// Wait until the first tick is inside RunBatch
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.runs) == 1
	}, time.Second, time.Millisecond)
	assert.True(t, s.Status().Running)

	// An overlapping tick no-ops
	s.Tick(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.runs))

	close(runner.block)
	<-done
	assert.False(t, s.Status().Running)

	// After draining, the next tick runs again
	s.Tick(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.runs))
}

func TestTick_RunErrorDoesNotEscape(t *testing.T) {
	clock := &fakeClock{now: marketOpen(t)}
	runner := &fakeRunner{err: errors.New("repository down")}
	s := newScheduler(runner, clock)

	assert.NotPanics(t, func() { s.Tick(context.Background()) })
	assert.Nil(t, s.LastSummary())
	assert.False(t, s.Status().Running)
}

type panickingRunner struct{}

func (panickingRunner) RunBatch(context.Context, string, bool, string) (*contracts.BatchSummary, error) {
	panic("orchestrator bug")
}

func TestTick_PanicContained(t *testing.T) {
	clock := &fakeClock{now: marketOpen(t)}
	s := newScheduler(panickingRunner{}, clock)

	assert.NotPanics(t, func() { s.Tick(context.Background()) })

	// The guard flag is released even on the panic path
	assert.False(t, s.Status().Running)
}

func TestTick_CancelledContextSkips(t *testing.T) {
	clock := &fakeClock{now: marketOpen(t)}
	runner := &fakeRunner{}
	s := newScheduler(runner, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Tick(ctx)
	assert.Zero(t, atomic.LoadInt32(&runner.runs))
}

func TestStatus(t *testing.T) {
	clock := &fakeClock{now: marketOpen(t)}
	s := newScheduler(&fakeRunner{}, clock)

	status := s.Status()
	assert.True(t, status.MarketOpen)
	assert.False(t, status.Running)
	assert.True(t, status.LastTickAt.IsZero())

	s.Tick(context.Background())
	status = s.Status()
	assert.Equal(t, clock.Now(), status.LastTickAt)
	assert.Equal(t, clock.Now(), status.LastRunAt)

	clock.set(marketClosed(t))
	assert.False(t, s.Status().MarketOpen)
}
