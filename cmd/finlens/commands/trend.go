package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
	"github.com/finlens/backend/internal/trend"
)

// trendCmd analyzes one metric over an entity's full history.
var trendCmd = &cobra.Command{
	Use:   "trend [entity] [metric]",
	Short: "Analyze a metric's trend over an entity's history",
	Long: `Analyze the period-over-period movement, CAGR and direction of
one metric across every stored snapshot of an entity.

Example:
  go run ./cmd/finlens trend ACME net_revenue
  go run ./cmd/finlens trend ACME roe`,
	Args: cobra.ExactArgs(2),
	RunE: runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	entityID, metric := args[0], args[1]

	_, log, profile, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := derive.Lookup(metric); err != nil {
		return fmt.Errorf("unknown metric %q (known: %s)", metric,
			strings.Join(derive.MetricNames(), ", "))
	}

	snapshots, err := source.LoadSeries(cmd.Context(), entityID)
	if err != nil {
		return err
	}

	analyzer := trend.NewAnalyzer(profile.Trend, log)
	result, err := analyzer.Analyze(cmd.Context(),
		&contracts.TrendSeries{EntityID: entityID, Snapshots: snapshots}, metric)
	if err != nil {
		return err
	}
	return printJSON(result)
}
