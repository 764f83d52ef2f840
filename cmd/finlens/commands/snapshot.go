package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/contracts"
)

// snapshotCmd inspects stored snapshots.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [entity] [period]",
	Short: "Show one stored snapshot with derived metrics",
	Long: `Show one entity/period snapshot, including the derived margins
and ratios. Without arguments, lists every known entity.

Example:
  go run ./cmd/finlens snapshot
  go run ./cmd/finlens snapshot ACME 2023Q4`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	_, _, _, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	switch len(args) {
	case 0:
		entities, err := source.ListEntities(ctx)
		if err != nil {
			return err
		}
		return printJSON(entities)
	case 1:
		periods, err := source.ListPeriods(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(periods)
	default:
		period, err := contracts.ParsePeriod(args[1])
		if err != nil {
			return err
		}
		s, err := source.Load(ctx, args[0], period)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("no snapshot for %s at %s", args[0], period)
		}
		return printJSON(s)
	}
}
