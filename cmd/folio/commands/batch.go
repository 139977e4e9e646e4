package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/internal/telemetry"
)

var (
	batchPeriod        string
	batchSkipEmpty     bool
	batchTenant        string
	batchNoSummaryFile bool
)

// batchCmd runs one batch over all tenants (or one) and exits.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run one batch over all tenant portfolios",
	Long: `Processes every tenant once: resolves symbols, values holdings,
computes metrics and publishes report artifacts.

Exit codes:
  0  every processed tenant succeeded
  1  at least one tenant failed
  2  no tenant was processed successfully

Examples:
  folio batch --period 1y --skip-empty
  folio batch --tenant 8f14e45f-ceea-4672-950c-6cf8590f1f01`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchPeriod, "period", "", "history period (default from BATCH_PERIOD)")
	batchCmd.Flags().BoolVar(&batchSkipEmpty, "skip-empty", true, "skip tenants without holdings")
	batchCmd.Flags().StringVar(&batchTenant, "tenant", "", "process a single tenant id")
	batchCmd.Flags().BoolVar(&batchNoSummaryFile, "no-summary-file", false, "do not write the summary JSON file")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchTenant != "" {
		if _, err := uuid.Parse(batchTenant); err != nil {
			return fmt.Errorf("invalid tenant id %q: %w", batchTenant, err)
		}
	}

	p, err := initPipeline()
	if err != nil {
		return err
	}
	defer p.close()

	period := batchPeriod
	if period == "" {
		period = p.cfg.Batch.Period
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runner contracts.BatchRunner = p.orchestrator
	if p.metrics != nil {
		runner = telemetry.Instrument(p.orchestrator, p.metrics)
	}

	summary, err := runner.RunBatch(ctx, period, batchSkipEmpty, batchTenant)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	printSummary(summary)

	if !batchNoSummaryFile {
		if path, err := saveSummary(summary, p.cfg.Batch.OutputDir); err != nil {
			p.log.WithError(err).Warn("Failed to write summary file")
		} else {
			fmt.Printf("\nSummary written to %s\n", path)
		}
	}

	code := 0
	switch {
	case summary.Failed > 0:
		code = 1
	case summary.Succeeded+summary.Partial == 0:
		code = 2
	}
	if code != 0 {
		p.close()
		os.Exit(code)
	}
	return nil
}

func printSummary(s *contracts.BatchSummary) {
	fmt.Println()
	fmt.Println("=== Batch Summary ===")
	fmt.Printf("Period:     %s\n", s.Period)
	fmt.Printf("Duration:   %s\n", s.CompletedAt.Sub(s.StartedAt).Round(time.Millisecond))
	fmt.Printf("Tenants:    %d\n", s.Total)
	fmt.Printf("Succeeded:  %d\n", s.Succeeded)
	fmt.Printf("Partial:    %d\n", s.Partial)
	fmt.Printf("Failed:     %d\n", s.Failed)
	fmt.Printf("Skipped:    %d\n", s.Skipped)

	if s.Failed > 0 {
		fmt.Println("\nFailed tenants:")
		for _, o := range s.Outcomes {
			if o.Status == contracts.StatusFailed {
				fmt.Printf("  %s: %s\n", o.TenantID, o.Error)
			}
		}
	}
}

// saveSummary writes the summary JSON under outputDir with a timestamped
// name, creating the directory if needed.
func saveSummary(s *contracts.BatchSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	name := fmt.Sprintf("batch_summary_%s.json", s.StartedAt.Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	return path, nil
}
