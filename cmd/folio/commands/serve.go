package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avidela/folio/internal/api"
)

// serveCmd runs the scheduler daemon together with the read-only status
// API on one process.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler with the status API",
	Long: `Starts the market-hours scheduler and serves the status surface:

  GET /health
  GET /summary            last completed batch summary
  GET /scheduler/status
  GET /metrics            Prometheus metrics (if enabled)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	router := api.NewRouter(sched, p.log, p.cfg.MetricsEnabled)
	server := api.New(p.cfg, p.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		sched.Stop()
		return err
	}

	fmt.Println("\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		p.log.WithError(err).Error("Server shutdown failed")
	}

	sched.Stop()
	return nil
}
