package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/valuation"
)

// valuationCmd runs the ROIC vs WACC analysis for an entity.
var valuationCmd = &cobra.Command{
	Use:   "valuation [entity]",
	Short: "Analyze value creation (ROIC vs WACC) for an entity",
	Long: `Compute ROIC, WACC and the value-creation verdict for an
entity's latest period. Beta and tax rate default to the configured
assumptions; the pre-tax cost of debt is estimated from leverage unless
given.

Example:
  go run ./cmd/finlens valuation ACME
  go run ./cmd/finlens valuation ACME --beta 1.3 --tax-rate 0.25`,
	Args: cobra.ExactArgs(1),
	RunE: runValuation,
}

var (
	valuationBeta       float64
	valuationTaxRate    float64
	valuationCostOfDebt float64
)

func init() {
	rootCmd.AddCommand(valuationCmd)

	valuationCmd.Flags().Float64Var(&valuationBeta, "beta", 1.0, "equity beta for CAPM")
	valuationCmd.Flags().Float64Var(&valuationTaxRate, "tax-rate", 0, "tax rate (default from profile)")
	valuationCmd.Flags().Float64Var(&valuationCostOfDebt, "cost-of-debt", 0, "pre-tax cost of debt (default estimated)")
}

func runValuation(cmd *cobra.Command, args []string) error {
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
	current := snapshots[len(snapshots)-1]

	analyzer := valuation.NewAnalyzer(profile.Valuation, log)

	taxRate := profile.Valuation.DefaultTaxRate
	if cmd.Flags().Changed("tax-rate") {
		taxRate = valuationTaxRate
	}
	costOfDebt := valuation.EstimateCostOfDebt(current)
	if cmd.Flags().Changed("cost-of-debt") {
		costOfDebt = contracts.Num(valuationCostOfDebt)
	}

	result, err := analyzer.Analyze(cmd.Context(), current, valuation.CapitalInputs{
		CostOfEquity:     contracts.Num(analyzer.CostOfEquityCAPM(valuationBeta)),
		CostOfDebtPretax: costOfDebt,
		TaxRate:          contracts.Num(taxRate),
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}
