package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/internal/scheduler"
	"github.com/avidela/folio/internal/telemetry"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the market-hours scheduler",
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	Long: `Ticks on a fixed wall-clock interval and runs a batch whenever the
market session is open (Mon-Fri inside the configured window). A tick that
fires while a batch is still running is skipped.

Stop with Ctrl+C; an in-flight batch drains before exit.`,
	RunE: runSchedulerStart,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	p, err := initPipeline()
	if err != nil {
		return err
	}
	defer p.close()

	sched, err := buildScheduler(p)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	fmt.Printf("Scheduler started: tick every %dm, window %02d:%02d-%02d:%02d %s\n",
		p.cfg.Scheduler.TickMinutes,
		p.cfg.Scheduler.OpenHour, p.cfg.Scheduler.OpenMinute,
		p.cfg.Scheduler.CloseHour, p.cfg.Scheduler.CloseMinute,
		p.cfg.Scheduler.Timezone,
	)
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down, draining in-flight batch...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

// buildScheduler assembles the scheduler around the wired orchestrator.
func buildScheduler(p *pipeline) (*scheduler.Scheduler, error) {
	window, err := sessionWindow(p.cfg)
	if err != nil {
		return nil, err
	}

	var runner contracts.BatchRunner = p.orchestrator
	if p.metrics != nil {
		runner = telemetry.Instrument(p.orchestrator, p.metrics)
	}

	return scheduler.New(runner, scheduler.Config{
		TickInterval: time.Duration(p.cfg.Scheduler.TickMinutes) * time.Minute,
		Window:       window,
		Period:       p.cfg.Batch.Period,
		SkipEmpty:    p.cfg.Batch.SkipEmpty,
	}, nil, p.log), nil
}
