package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/contracts"
)

var equalWeights = map[string]float64{
	"a": 0.25, "b": 0.25, "c": 0.25, "d": 0.25,
}

func components(scores ...contracts.Metric) []contracts.ComponentScore {
	names := []string{"a", "b", "c", "d"}
	out := make([]contracts.ComponentScore, len(scores))
	for i, s := range scores {
		out[i] = contracts.ComponentScore{Name: names[i], Score: s}
	}
	return out
}

func TestComposeEqualWeights(t *testing.T) {
	composite, err := Compose("test",
		components(contracts.Num(100), contracts.Num(100), contracts.Num(100), contracts.Num(100)),
		equalWeights)
	require.NoError(t, err)

	require.True(t, composite.Total.Valid)
	assert.InDelta(t, 100, composite.Total.Float64, 1e-9)
	assert.Empty(t, composite.Missing)
}

func TestComposeWeightedAverage(t *testing.T) {
	composite, err := Compose("test",
		components(contracts.Num(80), contracts.Num(60), contracts.Num(40), contracts.Num(20)),
		map[string]float64{"a": 0.4, "b": 0.3, "c": 0.2, "d": 0.1})
	require.NoError(t, err)

	require.True(t, composite.Total.Valid)
	assert.InDelta(t, 60, composite.Total.Float64, 1e-9) // 32+18+8+2
}

func TestComposeUndefinedComponentPropagates(t *testing.T) {
	composite, err := Compose("test",
		components(contracts.Num(100), contracts.Undefined(), contracts.Num(100), contracts.Undefined()),
		equalWeights)
	require.NoError(t, err)

	assert.False(t, composite.Total.Valid, "no neutral substitution for missing components")
	assert.Equal(t, []string{"b", "d"}, composite.Missing)
}

func TestComposeRejectsBadWeightSum(t *testing.T) {
	weights := map[string]float64{"a": 0.25, "b": 0.25, "c": 0.25, "d": 0.35}

	_, err := Compose("test",
		components(contracts.Num(1), contracts.Num(1), contracts.Num(1), contracts.Num(1)),
		weights)

	var weightsErr *contracts.InvalidWeightsError
	require.ErrorAs(t, err, &weightsErr)
	assert.InDelta(t, 1.10, weightsErr.Sum, 1e-9)
}

func TestComposeRejectsNameMismatch(t *testing.T) {
	weights := map[string]float64{"a": 0.25, "b": 0.25, "c": 0.25, "x": 0.25}

	_, err := Compose("test",
		components(contracts.Num(1), contracts.Num(1), contracts.Num(1), contracts.Num(1)),
		weights)

	var weightsErr *contracts.InvalidWeightsError
	require.ErrorAs(t, err, &weightsErr)
	assert.Equal(t, []string{"d"}, weightsErr.Missing)
	assert.Equal(t, []string{"x"}, weightsErr.Extra)
}

func TestComposeClampsTotal(t *testing.T) {
	composite, err := Compose("test",
		components(contracts.Num(120), contracts.Num(110), contracts.Num(105), contracts.Num(101)),
		equalWeights)
	require.NoError(t, err)
	assert.InDelta(t, 100, composite.Total.Float64, 1e-9)
}
