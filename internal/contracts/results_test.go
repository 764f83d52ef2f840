package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorVectorClipped(t *testing.T) {
	v := &FactorExposureVector{
		EntityID: "ACME",
		Exposures: map[string]Metric{
			"size":     Num(4.2),
			"value":    Num(-3.8),
			"quality":  Num(1.5),
			"momentum": Undefined(),
		},
	}

	clipped := v.Clipped(3)

	assert.InDelta(t, 3, clipped["size"].Float64, 1e-9)
	assert.InDelta(t, -3, clipped["value"].Float64, 1e-9)
	assert.InDelta(t, 1.5, clipped["quality"].Float64, 1e-9)
	assert.False(t, clipped["momentum"].Valid, "clipping never fabricates a value")

	// the stored vector stays unclipped
	require.InDelta(t, 4.2, v.Exposures["size"].Float64, 1e-9)
	require.InDelta(t, -3.8, v.Exposures["value"].Float64, 1e-9)
}
