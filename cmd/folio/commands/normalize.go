package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avidela/folio/internal/symbols"
)

// normalizeCmd inspects symbol normalization without touching the network
// or the database. Handy when debugging why a holding was dropped.
var normalizeCmd = &cobra.Command{
	Use:     "normalize [symbols...]",
	Short:   "Show how raw symbols normalize",
	Args:    cobra.MinimumNArgs(1),
	Example: `  folio normalize BTCUSD NVD.F BRK.B "^SPX" VOD.L`,
	RunE:    runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	normalizer := symbols.New(nil)

	fmt.Printf("%-12s %-12s %-14s %s\n", "RAW", "NORMALIZED", "SOURCE", "VALID")
	for _, raw := range args {
		ns := normalizer.Normalize(raw)
		fmt.Printf("%-12s %-12s %-14s %v\n", ns.Raw, ns.Normalized, ns.Source, ns.Valid)
	}

	return nil
}
