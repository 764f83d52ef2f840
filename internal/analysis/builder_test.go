package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/loader"
	"github.com/finlens/backend/internal/scoring"
	"github.com/finlens/backend/pkg/logger"
)

// fixtureSnap scales a full healthy statement by growth so trends have a
// direction to find.
func fixtureSnap(id, period string, scale float64) *contracts.Snapshot {
	p, _ := contracts.ParsePeriod(period)
	return &contracts.Snapshot{
		EntityID: id,
		Period:   p,
		Currency: "USD",
		Unit:     "million",
		Raw: contracts.RawLineItems{
			CashAndEquivalents: contracts.Num(200 * scale),
			AccountsReceivable: contracts.Num(100 * scale),
			Inventory:          contracts.Num(95 * scale),
			CurrentAssets:      contracts.Num(400 * scale),
			CurrentLiabilities: contracts.Num(200 * scale),
			TotalAssets:        contracts.Num(1000 * scale),
			TotalLiabilities:   contracts.Num(400 * scale),
			Equity:             contracts.Num(600 * scale),
			NetRevenue:         contracts.Num(800 * scale),
			GrossProfit:        contracts.Num(320 * scale),
			OperatingIncome:    contracts.Num(160 * scale),
			NetIncome:          contracts.Num(120 * scale),
			EPS:                contracts.Num(2 * scale),
			OperatingCashFlow:  contracts.Num(130 * scale),
		},
	}
}

func newFixtureBuilder(t *testing.T, entities ...string) *Builder {
	t.Helper()
	store, err := loader.NewFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	for i, id := range entities {
		// distinct base sizes keep the peer cross-section dispersed
		base := 1.0 + 0.3*float64(i)
		for q, period := range []string{"2022Q4", "2023Q1", "2023Q2", "2023Q3", "2023Q4"} {
			growth := base * (1 + 0.05*float64(q))
			require.NoError(t, store.Save(ctx, fixtureSnap(id, period, growth)))
		}
	}

	return NewBuilder(store, analysisconfig.Default(), logger.Nop())
}

func TestBuildAssemblesReport(t *testing.T) {
	b := newFixtureBuilder(t, "ACME")

	report, err := b.Build(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, "ACME", report.EntityID)
	assert.Equal(t, "2023Q4", report.Period.String())
	require.NotNil(t, report.Snapshot)
	require.NotNil(t, report.Snapshot.Derived)

	// revenue grows 5% a quarter, well past the flat threshold
	require.NotEmpty(t, report.Trends)
	byMetric := make(map[string]*contracts.TrendResult)
	for _, tr := range report.Trends {
		byMetric[tr.Metric] = tr
	}
	require.Contains(t, byMetric, "net_revenue")
	assert.Equal(t, contracts.TrendImproving, byMetric["net_revenue"].Direction)

	require.NotNil(t, report.Earnings)
	assert.True(t, report.Earnings.Total.Valid)

	require.NotNil(t, report.ValueCreation)
	assert.Equal(t, contracts.ValueCreating, report.ValueCreation.Verdict)

	require.NotNil(t, report.Warnings)
	assert.Equal(t, contracts.SeverityNone, report.Warnings.Overall)

	// factors are cross-sectional; a single entity has none
	assert.Nil(t, report.Factors)
}

func TestBuildWithManagement(t *testing.T) {
	b := newFixtureBuilder(t, "ACME")

	inputs := scoring.ManagementInputs{
		CEOTenureYears:           contracts.Num(6),
		CFOTenureYears:           contracts.Num(5),
		IndependenceRatio:        contracts.Num(0.6),
		InsiderBuys:              contracts.Num(6),
		InsiderSells:             contracts.Num(0),
		GovernanceIncidents:      contracts.Num(0),
		AuditIssues:              contracts.Num(0),
		RelatedPartyTransactions: contracts.Num(0),
	}

	report, err := b.BuildWithManagement(context.Background(), "ACME", inputs)
	require.NoError(t, err)

	require.NotNil(t, report.Management)
	require.True(t, report.Management.Total.Valid)
	assert.InDelta(t, 100, report.Management.Total.Float64, 1e-9)

	// the management section only exists with supplied observations
	plain, err := b.Build(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Nil(t, plain.Management)
}

func TestBuildUnknownEntity(t *testing.T) {
	b := newFixtureBuilder(t, "ACME")

	_, err := b.Build(context.Background(), "NOPE")

	var missing *contracts.MissingInputError
	require.ErrorAs(t, err, &missing)
}

func TestBuildAllAttachesFactors(t *testing.T) {
	b := newFixtureBuilder(t, "ACME", "BETA", "GAMMA", "DELTA")

	reports, err := b.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 4)

	for _, r := range reports {
		require.NotNil(t, r.Factors, r.EntityID)
		assert.Equal(t, "2023Q4", r.Factors.Period.String())
		assert.True(t, r.Factors.Exposures["size"].Valid, r.EntityID)
	}
}

func TestBuildAllEmptyStore(t *testing.T) {
	b := newFixtureBuilder(t)

	reports, err := b.BuildAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestMostCommonPeriod(t *testing.T) {
	q3 := contracts.Period{Year: 2023, Season: 3}
	q4 := contracts.Period{Year: 2023, Season: 4}

	reports := []*contracts.AnalysisReport{
		{Period: q4}, {Period: q3}, {Period: q3},
	}
	assert.Equal(t, q3, mostCommonPeriod(reports))

	// tie goes to the more recent period
	reports = append(reports, &contracts.AnalysisReport{Period: q4})
	assert.Equal(t, q4, mostCommonPeriod(reports))
}
