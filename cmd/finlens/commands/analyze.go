package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/analysis"
	"github.com/finlens/backend/internal/scoring"
)

// analyzeCmd builds the full report for one entity, or every entity
// with --all.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [entity]",
	Short: "Build the full analysis report for an entity",
	Long: `Build the complete analysis report for an entity at its latest
period: derived metrics, trends, earnings quality, value creation,
factor exposures (with --all) and early warnings. A governance inputs
file adds the management-quality section.

Example:
  go run ./cmd/finlens analyze ACME
  go run ./cmd/finlens analyze ACME --governance ./governance/ACME.json
  go run ./cmd/finlens analyze --all`,
	RunE: runAnalyze,
}

var (
	analyzeAll        bool
	analyzeGovernance string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "analyze every known entity")
	analyzeCmd.Flags().StringVar(&analyzeGovernance, "governance", "", "management inputs JSON file (single entity only)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if !analyzeAll && len(args) != 1 {
		return fmt.Errorf("expected an entity id or --all")
	}
	if analyzeAll && analyzeGovernance != "" {
		return fmt.Errorf("--governance applies to a single entity")
	}

	_, log, profile, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	builder := analysis.NewBuilder(source, profile, log)
	ctx := cmd.Context()

	if analyzeAll {
		reports, err := builder.BuildAll(ctx)
		if err != nil {
			return err
		}
		return printJSON(reports)
	}

	if analyzeGovernance != "" {
		inputs, err := readManagementInputs(analyzeGovernance)
		if err != nil {
			return err
		}
		report, err := builder.BuildWithManagement(ctx, args[0], inputs)
		if err != nil {
			return err
		}
		return printJSON(report)
	}

	report, err := builder.Build(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(report)
}

func readManagementInputs(path string) (scoring.ManagementInputs, error) {
	var inputs scoring.ManagementInputs

	data, err := os.ReadFile(path)
	if err != nil {
		return inputs, fmt.Errorf("read governance inputs: %w", err)
	}
	if err := json.Unmarshal(data, &inputs); err != nil {
		return inputs, fmt.Errorf("decode governance inputs: %w", err)
	}
	return inputs, nil
}
