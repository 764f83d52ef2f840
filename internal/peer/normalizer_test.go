package peer

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

func newNormalizer() *Normalizer {
	return NewNormalizer(analysisconfig.Default().Peer, logger.Nop())
}

func peerSnap(id string, netIncome contracts.Metric) *contracts.Snapshot {
	return &contracts.Snapshot{
		EntityID: id,
		Period:   contracts.Period{Year: 2023, Season: 4},
		Currency: "USD",
		Unit:     "million",
		Raw: contracts.RawLineItems{
			NetRevenue: contracts.Num(800),
			NetIncome:  netIncome,
		},
	}
}

func peerSet(snapshots ...*contracts.Snapshot) *contracts.PeerSet {
	return &contracts.PeerSet{
		Period:    contracts.Period{Year: 2023, Season: 4},
		Snapshots: snapshots,
	}
}

func TestNormalizeNetMargin(t *testing.T) {
	// margins 37.5 / 18.75 / 0, symmetric around the mean 18.75
	peers := peerSet(
		peerSnap("A", contracts.Num(300)),
		peerSnap("B", contracts.Num(0)),
		peerSnap("C", contracts.Num(150)),
	)

	result, err := newNormalizer().Normalize(context.Background(), peers, "net_margin")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Population)
	assert.InDelta(t, 18.75, result.Mean, 1e-9)
	assert.InDelta(t, 0, result.Scores["C"].Float64, 1e-9)
	assert.InDelta(t, result.Scores["A"].Float64, -result.Scores["B"].Float64, 1e-9)
	assert.Greater(t, result.Scores["A"].Float64, 0.0)
}

func TestNormalizeZeroMeanUnitVariance(t *testing.T) {
	values := map[string]contracts.Metric{
		"A": contracts.Num(10), "B": contracts.Num(20),
		"C": contracts.Num(30), "D": contracts.Num(40),
	}

	result, err := newNormalizer().NormalizeValues("net_income", values)
	require.NoError(t, err)

	var sum, sumSq float64
	for _, z := range result.Scores {
		sum += z.Float64
		sumSq += z.Float64 * z.Float64
	}
	assert.InDelta(t, 0, sum, 1e-9, "z-scores must have zero mean")
	assert.InDelta(t, float64(len(values)-1), sumSq, 1e-9, "sample variance of z-scores must be 1")
}

func TestNormalizeOrderInvariance(t *testing.T) {
	values := map[string]contracts.Metric{
		"E1": contracts.Num(0.1), "E2": contracts.Num(0.2), "E3": contracts.Num(0.3),
		"E4": contracts.Num(0.7), "E5": contracts.Num(1.1), "E6": contracts.Num(1.3),
	}

	n := newNormalizer()
	first, err := n.NormalizeValues("roe", values)
	require.NoError(t, err)

	// maps iterate in random order; repeated runs must agree exactly
	for i := 0; i < 20; i++ {
		again, err := n.NormalizeValues("roe", values)
		require.NoError(t, err)
		for id := range values {
			assert.Equal(t, first.Scores[id].Float64, again.Scores[id].Float64, id)
		}
	}
}

func TestNormalizeExcludesUndefined(t *testing.T) {
	values := map[string]contracts.Metric{
		"A": contracts.Num(10), "B": contracts.Num(20),
		"C": contracts.Num(30), "D": contracts.Undefined(),
	}

	result, err := newNormalizer().NormalizeValues("roe", values)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Population)
	assert.Equal(t, []string{"D"}, result.Excluded)
	_, scored := result.Scores["D"]
	assert.False(t, scored, "excluded entities get no z-score, not a zero")
	assert.InDelta(t, 20, result.Mean, 1e-9, "statistics cover only the defined subpopulation")
}

func TestNormalizeInsufficientPopulation(t *testing.T) {
	values := map[string]contracts.Metric{
		"A": contracts.Num(10), "B": contracts.Num(20), "C": contracts.Undefined(),
	}

	_, err := newNormalizer().NormalizeValues("roe", values)

	var popErr *contracts.InsufficientPeerPopulationError
	require.ErrorAs(t, err, &popErr)
	assert.Equal(t, 2, popErr.Population)
	assert.Equal(t, 3, popErr.Minimum)
}

func TestNormalizeZeroDispersion(t *testing.T) {
	values := map[string]contracts.Metric{
		"A": contracts.Num(5), "B": contracts.Num(5), "C": contracts.Num(5),
	}

	_, err := newNormalizer().NormalizeValues("roe", values)

	var popErr *contracts.InsufficientPeerPopulationError
	require.ErrorAs(t, err, &popErr)
	assert.True(t, popErr.ZeroStdDev)
}

func TestNormalizeSampleStdDev(t *testing.T) {
	values := map[string]contracts.Metric{
		"A": contracts.Num(2), "B": contracts.Num(4), "C": contracts.Num(6),
	}

	result, err := newNormalizer().NormalizeValues("roe", values)
	require.NoError(t, err)
	assert.InDelta(t, 2, result.StdDev, 1e-9, "want sample (n-1) standard deviation")
	assert.InDelta(t, 1, math.Abs(result.Scores["A"].Float64), 1e-9)
}

func TestNormalizeRejectsDuplicateEntities(t *testing.T) {
	peers := peerSet(
		peerSnap("A", contracts.Num(100)),
		peerSnap("A", contracts.Num(200)),
		peerSnap("B", contracts.Num(300)),
	)

	_, err := newNormalizer().Normalize(context.Background(), peers, "net_income")
	assert.Error(t, err)
}

func TestCompareRanking(t *testing.T) {
	peers := peerSet(
		peerSnap("A", contracts.Num(300)),
		peerSnap("B", contracts.Num(0)),
		peerSnap("C", contracts.Num(150)),
		peerSnap("D", contracts.Undefined()),
	)

	result, err := newNormalizer().Compare(context.Background(), peers, "net_margin")
	require.NoError(t, err)

	assert.Equal(t, "A", result.Best)
	assert.Equal(t, "B", result.Worst)
	assert.Equal(t, 1, result.Ranking["A"])
	assert.Equal(t, 2, result.Ranking["C"])
	assert.Equal(t, 3, result.Ranking["B"])
	assert.Equal(t, []string{"D"}, result.Excluded)
}
