package trend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(analysisconfig.Default().Trend, logger.Nop())
}

func snap(period string, revenue contracts.Metric) *contracts.Snapshot {
	p, _ := contracts.ParsePeriod(period)
	return &contracts.Snapshot{
		EntityID: "ACME",
		Period:   p,
		Currency: "USD",
		Unit:     "million",
		Raw:      contracts.RawLineItems{NetRevenue: revenue},
	}
}

func series(snapshots ...*contracts.Snapshot) *contracts.TrendSeries {
	return &contracts.TrendSeries{EntityID: "ACME", Snapshots: snapshots}
}

func TestAnalyzeRisingRevenue(t *testing.T) {
	result, err := newAnalyzer().Analyze(context.Background(), series(
		snap("2022Q4", contracts.Num(100)),
		snap("2023Q1", contracts.Num(110)),
		snap("2023Q2", contracts.Num(121)),
	), "net_revenue")
	require.NoError(t, err)

	assert.Equal(t, contracts.TrendImproving, result.Direction)
	require.True(t, result.CAGRPct.Valid)
	assert.Greater(t, result.CAGRPct.Float64, 0.0)
	assert.Empty(t, result.Gaps)

	// deltas and growth against the previous defined point
	require.Len(t, result.Points, 3)
	assert.False(t, result.Points[0].Delta.Valid)
	assert.InDelta(t, 10, result.Points[1].Delta.Float64, 1e-9)
	assert.InDelta(t, 10, result.Points[1].GrowthPct.Float64, 1e-9)
}

func TestAnalyzeLowerIsBetterMetric(t *testing.T) {
	a := newAnalyzer()
	s := series(
		&contracts.Snapshot{EntityID: "ACME", Period: contracts.Period{Year: 2023, Season: 1}, Currency: "USD", Unit: "million",
			Raw: contracts.RawLineItems{Inventory: contracts.Num(200)}},
		&contracts.Snapshot{EntityID: "ACME", Period: contracts.Period{Year: 2023, Season: 2}, Currency: "USD", Unit: "million",
			Raw: contracts.RawLineItems{Inventory: contracts.Num(150)}},
	)

	result, err := a.Analyze(context.Background(), s, "inventory")
	require.NoError(t, err)
	assert.Equal(t, contracts.TrendImproving, result.Direction, "falling inventory improves")
}

func TestAnalyzeFlatBelowThreshold(t *testing.T) {
	result, err := newAnalyzer().Analyze(context.Background(), series(
		snap("2023Q1", contracts.Num(1000)),
		snap("2023Q2", contracts.Num(1005)), // +0.5% < 1% threshold
	), "net_revenue")
	require.NoError(t, err)
	assert.Equal(t, contracts.TrendFlat, result.Direction)
}

func TestAnalyzeInsufficientLength(t *testing.T) {
	_, err := newAnalyzer().Analyze(context.Background(),
		series(snap("2023Q1", contracts.Num(100))), "net_revenue")

	var lenErr *contracts.InsufficientTrendLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, "net_revenue", lenErr.Metric)
}

func TestAnalyzeUndefinedPointsDontCount(t *testing.T) {
	_, err := newAnalyzer().Analyze(context.Background(), series(
		snap("2023Q1", contracts.Num(100)),
		snap("2023Q2", contracts.Undefined()),
		snap("2023Q3", contracts.Undefined()),
	), "net_revenue")

	var lenErr *contracts.InsufficientTrendLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 1, lenErr.Defined)
}

func TestAnalyzeReportsGaps(t *testing.T) {
	result, err := newAnalyzer().Analyze(context.Background(), series(
		snap("2023Q1", contracts.Num(100)),
		snap("2023Q4", contracts.Num(130)),
	), "net_revenue")
	require.NoError(t, err)

	require.Len(t, result.Gaps, 2)
	assert.Equal(t, "2023Q2", result.Gaps[0].String())
	assert.Equal(t, "2023Q3", result.Gaps[1].String())
}

func TestAnalyzeRejectsUnorderedSeries(t *testing.T) {
	_, err := newAnalyzer().Analyze(context.Background(), series(
		snap("2023Q2", contracts.Num(100)),
		snap("2023Q1", contracts.Num(110)),
	), "net_revenue")
	assert.Error(t, err)
}

func TestAnalyzeRejectsMixedUnits(t *testing.T) {
	a := snap("2023Q1", contracts.Num(100))
	b := snap("2023Q2", contracts.Num(110))
	b.Currency = "EUR"

	_, err := newAnalyzer().Analyze(context.Background(), series(a, b), "net_revenue")

	var unitsErr *contracts.InconsistentUnitsError
	require.ErrorAs(t, err, &unitsErr)
}

func TestCAGRUndefinedAcrossSignChange(t *testing.T) {
	s := series(
		&contracts.Snapshot{EntityID: "ACME", Period: contracts.Period{Year: 2023, Season: 1}, Currency: "USD", Unit: "million",
			Raw: contracts.RawLineItems{NetIncome: contracts.Num(-50)}},
		&contracts.Snapshot{EntityID: "ACME", Period: contracts.Period{Year: 2023, Season: 2}, Currency: "USD", Unit: "million",
			Raw: contracts.RawLineItems{NetIncome: contracts.Num(80)}},
	)

	result, err := newAnalyzer().Analyze(context.Background(), s, "net_income")
	require.NoError(t, err)
	assert.False(t, result.CAGRPct.Valid, "geometric rate has no meaning across a sign change")
	assert.Equal(t, contracts.TrendImproving, result.Direction)
}
