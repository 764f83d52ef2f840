package commands

import (
	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/ews"
)

// warnCmd evaluates the early-warning catalog for an entity.
var warnCmd = &cobra.Command{
	Use:   "warn [entity]",
	Short: "Evaluate early-warning rules for an entity",
	Long: `Evaluate the full early-warning rule catalog against an
entity's latest period: liquidity, leverage, earnings-cash divergence,
working capital spikes, margin compression and cash depletion.

Example:
  go run ./cmd/finlens warn ACME`,
	Args: cobra.ExactArgs(1),
	RunE: runWarn,
}

func init() {
	rootCmd.AddCommand(warnCmd)
}

func runWarn(cmd *cobra.Command, args []string) error {
	entityID := args[0]

	_, log, profile, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	snapshots, err := source.LoadSeries(cmd.Context(), entityID)
	if err != nil {
		return err
	}

	engine := ews.NewEngine(profile.Warning, log)
	report, err := engine.Evaluate(cmd.Context(),
		&contracts.TrendSeries{EntityID: entityID, Snapshots: snapshots}, ews.ExtraSignals{})
	if err != nil {
		return err
	}
	return printJSON(report)
}
