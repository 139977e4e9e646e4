// Package commands wires the folio CLI: one-shot batch runs, the
// market-hours scheduler daemon, the status server and symbol tooling.
package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Tenant portfolio batch reporter",
	Long: `folio processes every tenant's investment portfolio: resolves raw
ticker symbols against the market data provider, values holdings, computes
risk metrics and publishes report artifacts to tenant-scoped storage.

Examples:
  folio batch --period 6mo --skip-empty
  folio batch --tenant 8f14e45f-ceea-4672-950c-6cf8590f1f01
  folio scheduler start
  folio serve
  folio normalize BTCUSD NVD.F BRK.B`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
