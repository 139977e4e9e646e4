package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/pkg/logger"
)

// Clock abstracts wall-clock time so ticks are testable without real waits.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds scheduler settings.
type Config struct {
	TickInterval time.Duration
	Window       SessionWindow
	Period       string
	SkipEmpty    bool
}

// Scheduler fires a tick on a fixed wall-clock interval and runs a batch
// when the market session is open. Ticks are scheduled independently of how
// long a batch takes; an overlapping tick no-ops instead of starting a
// second run against the same tenant keys.
type Scheduler struct {
	runner contracts.BatchRunner
	cfg    Config
	clock  Clock
	logger *logger.Logger

	cron    *cron.Cron
	ctx     context.Context
	running atomic.Bool

	mu          sync.RWMutex
	lastSummary *contracts.BatchSummary
	lastTickAt  time.Time
	lastRunAt   time.Time
}

// New creates a scheduler. clock may be nil to use the system clock.
func New(runner contracts.BatchRunner, cfg Config, clock Clock, log *logger.Logger) *Scheduler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		clock:  clock,
		logger: log.WithField("module", "scheduler"),
	}
}

// Start begins ticking. It returns immediately; ticks run on the cron
// goroutine until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx = ctx
	s.cron = cron.New()

	spec := fmt.Sprintf("@every %s", s.cfg.TickInterval)
	if _, err := s.cron.AddFunc(spec, func() { s.Tick(s.ctx) }); err != nil {
		return fmt.Errorf("failed to schedule tick: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(map[string]interface{}{
		"interval": s.cfg.TickInterval,
		"timezone": s.cfg.Window.Location.String(),
	}).Info("Scheduler started")

	return nil
}

// Stop halts ticking and waits for an in-flight batch to drain, so no
// tenant is killed mid-write.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// Tick evaluates the session window once and runs a batch if the market is
// open. Exported so tests and the CLI can drive it directly. Nothing
// escapes a tick: errors and panics are logged and the loop lives on.
func (s *Scheduler) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Tick panicked: %v", r)
		}
	}()

	now := s.clock.Now()
	s.mu.Lock()
	s.lastTickAt = now
	s.mu.Unlock()

	if ctx.Err() != nil {
		s.logger.Info("Tick skipped, shutting down")
		return
	}

	if !s.cfg.Window.Open(now) {
		s.logger.WithField("time", now.In(s.cfg.Window.Location)).Debug("Market closed, tick skipped")
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous batch still running, tick skipped")
		return
	}
	defer s.running.Store(false)

	s.logger.Info("Market open, starting batch run")

	summary, err := s.runner.RunBatch(ctx, s.cfg.Period, s.cfg.SkipEmpty, "")
	if err != nil {
		s.logger.WithError(err).Error("Batch run failed")
		return
	}

	s.mu.Lock()
	s.lastSummary = summary
	s.lastRunAt = now
	s.mu.Unlock()
}

// Status describes the scheduler for the read API.
type Status struct {
	Running    bool      `json:"running"`
	MarketOpen bool      `json:"market_open"`
	LastTickAt time.Time `json:"last_tick_at"`
	LastRunAt  time.Time `json:"last_run_at"`
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Running:    s.running.Load(),
		MarketOpen: s.cfg.Window.Open(s.clock.Now()),
		LastTickAt: s.lastTickAt,
		LastRunAt:  s.lastRunAt,
	}
}

// LastSummary returns the most recent completed batch summary, or nil.
func (s *Scheduler) LastSummary() *contracts.BatchSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSummary
}
