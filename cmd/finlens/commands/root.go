package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "finlens",
	Short: "FinLens - fundamental analytics and scoring engine",
	Long: `FinLens Unified CLI

Quantitative fundamental analysis over quarterly financial snapshots:
derived metrics, trends, peer z-scores, quality composites, ROIC vs
WACC, factor exposures, and early warnings.

Usage:
  go run ./cmd/finlens [command]

Examples:
  go run ./cmd/finlens api
  go run ./cmd/finlens analyze ACME
  go run ./cmd/finlens trend ACME net_revenue
  go run ./cmd/finlens warn ACME`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
