package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/scoring"
)

// scoreCmd computes quality composites.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute quality composite scores",
}

// scoreEarningsCmd scores earnings quality from stored history.
var scoreEarningsCmd = &cobra.Command{
	Use:   "earnings [entity]",
	Short: "Score earnings quality for an entity's latest period",
	Args:  cobra.ExactArgs(1),
	RunE:  runScoreEarnings,
}

// scoreManagementCmd scores management quality from a JSON inputs file.
var scoreManagementCmd = &cobra.Command{
	Use:   "management [inputs.json]",
	Short: "Score management quality from a governance inputs file",
	Long: `Score management quality from a JSON file of governance
observations (tenure, board composition, insider transactions, red-flag
counts).

Example:
  go run ./cmd/finlens score management ./governance/ACME.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScoreManagement,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreEarningsCmd)
	scoreCmd.AddCommand(scoreManagementCmd)
}

func runScoreEarnings(cmd *cobra.Command, args []string) error {
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
	if len(snapshots) == 0 {
		return fmt.Errorf("no snapshots for entity %s", entityID)
	}

	scorer := scoring.NewEarningsScorer(profile.Scoring.Earnings, log)
	score, err := scorer.Score(cmd.Context(), snapshots[len(snapshots)-1], snapshots[:len(snapshots)-1])
	if err != nil {
		return err
	}
	return printJSON(score)
}

func runScoreManagement(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}

	var inputs scoring.ManagementInputs
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("decode inputs: %w", err)
	}

	_, log, profile, _, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	scorer := scoring.NewManagementScorer(profile.Scoring.Management, log)
	score, err := scorer.Score(cmd.Context(), inputs)
	if err != nil {
		return err
	}
	return printJSON(score)
}
