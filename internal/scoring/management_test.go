package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

func newManagementScorer() *ManagementScorer {
	return NewManagementScorer(analysisconfig.Default().Scoring.Management, logger.Nop())
}

func strongInputs() ManagementInputs {
	return ManagementInputs{
		CEOTenureYears:           contracts.Num(6),
		CFOTenureYears:           contracts.Num(5),
		IndependenceRatio:        contracts.Num(0.6),
		InsiderBuys:              contracts.Num(6),
		InsiderSells:             contracts.Num(0),
		GovernanceIncidents:      contracts.Num(0),
		AuditIssues:              contracts.Num(0),
		RelatedPartyTransactions: contracts.Num(0),
	}
}

func TestManagementScoreStrongProfile(t *testing.T) {
	score, err := newManagementScorer().Score(context.Background(), strongInputs())
	require.NoError(t, err)

	require.True(t, score.Total.Valid)
	assert.InDelta(t, 100, score.Total.Float64, 1e-9)
	assert.Empty(t, score.Missing)
}

func TestManagementTenureAnchors(t *testing.T) {
	m := newManagementScorer()

	cases := []struct {
		years float64
		want  float64
	}{
		{0, 0},
		{1.5, 30},
		{3, 60},
		{4, 80},
		{5, 100},
		{9, 100},
	}
	for _, tc := range cases {
		c := m.tenureStability(ManagementInputs{
			CEOTenureYears: contracts.Num(tc.years),
			CFOTenureYears: contracts.Num(tc.years),
		})
		require.True(t, c.Score.Valid)
		assert.InDelta(t, tc.want, c.Score.Float64, 1e-9, "tenure %.1f years", tc.years)
	}
}

func TestManagementFamilyControlPenalty(t *testing.T) {
	m := newManagementScorer()

	open := m.boardIndependence(ManagementInputs{IndependenceRatio: contracts.Num(0.5)})
	family := m.boardIndependence(ManagementInputs{IndependenceRatio: contracts.Num(0.5), FamilyControlled: true})

	assert.InDelta(t, 100, open.Score.Float64, 1e-9)
	assert.InDelta(t, 70, family.Score.Float64, 1e-9)
}

func TestManagementInsiderSteps(t *testing.T) {
	m := newManagementScorer()

	cases := []struct {
		buys, sells float64
		want        float64
	}{
		{6, 0, 100},
		{3, 0, 80},
		{1, 1, 60},
		{0, 2, 40},
		{0, 4, 20},
		{0, 9, 0},
	}
	for _, tc := range cases {
		c := m.insiderAlignment(ManagementInputs{
			InsiderBuys:  contracts.Num(tc.buys),
			InsiderSells: contracts.Num(tc.sells),
		})
		assert.InDelta(t, tc.want, c.Score.Float64, 1e-9, "net %+.0f", tc.buys-tc.sells)
	}
}

func TestManagementGovernanceInversion(t *testing.T) {
	m := newManagementScorer()

	clean := m.governance(ManagementInputs{GovernanceIncidents: contracts.Num(0), AuditIssues: contracts.Num(0), RelatedPartyTransactions: contracts.Num(0)})
	one := m.governance(ManagementInputs{GovernanceIncidents: contracts.Num(1), AuditIssues: contracts.Num(0), RelatedPartyTransactions: contracts.Num(0)})
	many := m.governance(ManagementInputs{GovernanceIncidents: contracts.Num(3), AuditIssues: contracts.Num(2), RelatedPartyTransactions: contracts.Num(1)})

	assert.InDelta(t, 100, clean.Score.Float64, 1e-9)
	assert.InDelta(t, 70, one.Score.Float64, 1e-9)
	assert.InDelta(t, 0, many.Score.Float64, 1e-9)
}

func TestManagementMissingComponentUndefinesComposite(t *testing.T) {
	inputs := strongInputs()
	inputs.InsiderBuys = contracts.Undefined()
	inputs.InsiderSells = contracts.Undefined()

	score, err := newManagementScorer().Score(context.Background(), inputs)
	require.NoError(t, err)

	assert.False(t, score.Total.Valid)
	assert.Equal(t, []string{"insider_alignment"}, score.Missing)
}
