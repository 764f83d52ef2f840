package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/contracts"
)

func sampleRaw() contracts.RawLineItems {
	return contracts.RawLineItems{
		CurrentAssets:      contracts.Num(500),
		CurrentLiabilities: contracts.Num(250),
		TotalAssets:        contracts.Num(1000),
		TotalLiabilities:   contracts.Num(400),
		Equity:             contracts.Num(600),
		NetRevenue:         contracts.Num(800),
		GrossProfit:        contracts.Num(320),
		OperatingIncome:    contracts.Num(160),
		NetIncome:          contracts.Num(120),
		OperatingCashFlow:  contracts.Num(100),
	}
}

func TestMetrics(t *testing.T) {
	d := Metrics(sampleRaw())

	assert.InDelta(t, 40, d.GrossMargin.Float64, 1e-9)
	assert.InDelta(t, 20, d.OperatingMargin.Float64, 1e-9)
	assert.InDelta(t, 15, d.NetMargin.Float64, 1e-9)
	// quarterly returns are annualized
	assert.InDelta(t, 80, d.ROE.Float64, 1e-9)  // 120/600 * 100 * 4
	assert.InDelta(t, 48, d.ROA.Float64, 1e-9)  // 120/1000 * 100 * 4
	assert.InDelta(t, 2, d.CurrentRatio.Float64, 1e-9)
	assert.InDelta(t, 40, d.DebtRatio.Float64, 1e-9)
	assert.InDelta(t, 60, d.EquityRatio.Float64, 1e-9)
	assert.InDelta(t, 0.02, d.AccrualRatio.Float64, 1e-9) // (120-100)/1000
}

func TestMetricsUndefinedDenominators(t *testing.T) {
	d := Metrics(contracts.RawLineItems{
		GrossProfit: contracts.Num(100),
		NetRevenue:  contracts.Num(0), // present zero, not absent
		NetIncome:   contracts.Num(50),
	})

	assert.False(t, d.GrossMargin.Valid, "zero revenue must not produce a zero margin")
	assert.False(t, d.ROE.Valid, "missing equity must leave ROE undefined")
	assert.False(t, d.CurrentRatio.Valid)
}

func TestMetricsDeterministic(t *testing.T) {
	raw := sampleRaw()
	assert.Equal(t, Metrics(raw), Metrics(raw), "re-derivation must be bit-identical")
}

func TestEnrichDoesNotMutate(t *testing.T) {
	s := &contracts.Snapshot{EntityID: "ACME", Raw: sampleRaw()}
	out := Enrich(s)

	assert.Nil(t, s.Derived)
	require.NotNil(t, out.Derived)
	assert.Equal(t, s.Raw, out.Raw)
}

func TestLookup(t *testing.T) {
	def, err := Lookup("net_margin")
	require.NoError(t, err)
	assert.True(t, def.HigherIsBetter)

	// derived metrics are computed on the fly for bare snapshots
	s := &contracts.Snapshot{Raw: sampleRaw()}
	v := def.Extract(s)
	require.True(t, v.Valid)
	assert.InDelta(t, 15, v.Float64, 1e-9)

	def, err = Lookup("debt_ratio")
	require.NoError(t, err)
	assert.False(t, def.HigherIsBetter)

	_, err = Lookup("no_such_metric")
	assert.Error(t, err)
}
