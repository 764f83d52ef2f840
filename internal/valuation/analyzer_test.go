package valuation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(analysisconfig.Default().Valuation, logger.Nop())
}

func valuationSnap() *contracts.Snapshot {
	return &contracts.Snapshot{
		EntityID: "ACME",
		Period:   contracts.Period{Year: 2023, Season: 4},
		Currency: "USD",
		Unit:     "million",
		Raw: contracts.RawLineItems{
			Equity:           contracts.Num(600),
			TotalLiabilities: contracts.Num(400),
			TotalAssets:      contracts.Num(1000),
			OperatingIncome:  contracts.Num(187.5),
		},
	}
}

func TestAnalyzeValueCreating(t *testing.T) {
	// NOPAT 150, invested capital 1000 -> ROIC 15%.
	// WACC = 0.6*12% + 0.4*8.75%*0.8 = 10%. Spread +5pts.
	result, err := newTestAnalyzer().Analyze(context.Background(), valuationSnap(), CapitalInputs{
		CostOfEquity:     contracts.Num(0.12),
		CostOfDebtPretax: contracts.Num(0.0875),
		TaxRate:          contracts.Num(0.20),
	})
	require.NoError(t, err)

	assert.InDelta(t, 150, result.NOPAT.Float64, 1e-9)
	assert.InDelta(t, 1000, result.InvestedCapital.Float64, 1e-9)
	assert.InDelta(t, 15, result.ROICPct.Float64, 1e-9)
	assert.InDelta(t, 10, result.WACCPct.Float64, 1e-9)
	assert.InDelta(t, 5, result.SpreadPct.Float64, 1e-9)
	assert.Equal(t, contracts.ValueCreating, result.Verdict)
	assert.InDelta(t, 0.12, result.Assumptions["cost_of_equity"], 1e-12)
}

func TestAnalyzeVerdictBands(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		spread float64
		want   contracts.ValueCreationVerdict
	}{
		{5, contracts.ValueCreating},
		{1.01, contracts.ValueCreating},
		{1, contracts.ValueNeutral}, // at the cut point, not above it
		{0, contracts.ValueNeutral},
		{-1, contracts.ValueNeutral},
		{-1.01, contracts.ValueDestroying},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, a.verdict(contracts.Num(tc.spread)), "spread %.2f", tc.spread)
	}
	assert.Equal(t, contracts.ValueNeutral, a.verdict(contracts.Undefined()))
}

func TestAnalyzeMissingCostInputs(t *testing.T) {
	_, err := newTestAnalyzer().Analyze(context.Background(), valuationSnap(), CapitalInputs{
		CostOfEquity: contracts.Num(0.12),
		TaxRate:      contracts.Num(0.20),
	})

	var missing *contracts.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "cost_of_debt_pretax", missing.Field)
}

func TestAnalyzeUndefinedBalanceSheet(t *testing.T) {
	s := valuationSnap()
	s.Raw.Equity = contracts.Undefined()

	result, err := newTestAnalyzer().Analyze(context.Background(), s, CapitalInputs{
		CostOfEquity:     contracts.Num(0.12),
		CostOfDebtPretax: contracts.Num(0.08),
		TaxRate:          contracts.Num(0.20),
	})
	require.NoError(t, err)

	assert.False(t, result.ROICPct.Valid, "missing equity must not become a zero ROIC")
	assert.False(t, result.SpreadPct.Valid)
	assert.Equal(t, contracts.ValueNeutral, result.Verdict)
}

func TestAnalyzeExplicitCapitalWeights(t *testing.T) {
	result, err := newTestAnalyzer().Analyze(context.Background(), valuationSnap(), CapitalInputs{
		CostOfEquity:     contracts.Num(0.10),
		CostOfDebtPretax: contracts.Num(0.05),
		TaxRate:          contracts.Num(0.20),
		EquityWeight:     contracts.Num(0.5),
		DebtWeight:       contracts.Num(0.5),
	})
	require.NoError(t, err)

	// 0.5*10% + 0.5*5%*0.8 = 7%
	assert.InDelta(t, 7, result.WACCPct.Float64, 1e-9)
}

func TestCostOfEquityCAPM(t *testing.T) {
	a := newTestAnalyzer()
	// rf 2% + 1.5 * 6% = 11%
	assert.InDelta(t, 0.11, a.CostOfEquityCAPM(1.5), 1e-12)
}

func TestAnalyzeAllocation(t *testing.T) {
	alloc, err := newTestAnalyzer().AnalyzeAllocation(context.Background(), valuationSnap(), AllocationInputs{
		Dividends:  20,
		Buybacks:   10,
		Capex:      50,
		RDExpense:  15,
		MASpending: 5,
		DebtChange: -10,
	})
	require.NoError(t, err)

	assert.InDelta(t, 30, alloc.ShareholderReturns, 1e-9)
	assert.InDelta(t, 70, alloc.TotalInvestment, 1e-9)
	assert.InDelta(t, 50, alloc.Mix["capex"], 1e-9)
	assert.InDelta(t, 20, alloc.Mix["dividends"], 1e-9)
	assert.InDelta(t, 10, alloc.Mix["buybacks"], 1e-9)
}

func TestAnalyzeAllocationNothingDeployed(t *testing.T) {
	alloc, err := newTestAnalyzer().AnalyzeAllocation(context.Background(), valuationSnap(), AllocationInputs{})
	require.NoError(t, err)
	assert.Empty(t, alloc.Mix)
	assert.Zero(t, alloc.ShareholderReturns)
}
