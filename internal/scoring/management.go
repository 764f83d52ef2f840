package scoring

import (
	"context"
	"fmt"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

// ManagementInputs are the governance observations supplied by the
// caller. Count fields use Metric so "not reported" stays distinct from
// "reported as zero" where the upstream format makes the distinction.
type ManagementInputs struct {
	CEOTenureYears    contracts.Metric `json:"ceo_tenure_years"`
	CFOTenureYears    contracts.Metric `json:"cfo_tenure_years"`
	IndependenceRatio contracts.Metric `json:"independence_ratio"` // 0..1
	FamilyControlled  bool             `json:"family_controlled"`

	InsiderBuys  contracts.Metric `json:"insider_buys"`
	InsiderSells contracts.Metric `json:"insider_sells"`

	GovernanceIncidents      contracts.Metric `json:"governance_incidents"`
	AuditIssues              contracts.Metric `json:"audit_issues"`
	RelatedPartyTransactions contracts.Metric `json:"related_party_transactions"`
}

// ManagementScorer produces the management-quality composite.
type ManagementScorer struct {
	cfg analysisconfig.Management
	log *logger.Logger
}

// NewManagementScorer creates a scorer with explicit configuration.
func NewManagementScorer(cfg analysisconfig.Management, log *logger.Logger) *ManagementScorer {
	return &ManagementScorer{cfg: cfg, log: log}
}

// Score computes the four management components and composes them.
// Components: tenure stability, board independence, insider alignment,
// governance (red flags inverted: more incidents, lower score).
func (m *ManagementScorer) Score(ctx context.Context, in ManagementInputs) (*contracts.CompositeScore, error) {
	components := []contracts.ComponentScore{
		m.tenureStability(in),
		m.boardIndependence(in),
		m.insiderAlignment(in),
		m.governance(in),
	}

	composite, err := Compose("management_quality", components, m.cfg.Weights)
	if err != nil {
		return nil, err
	}

	m.log.WithFields(map[string]interface{}{
		"total":   composite.Total,
		"missing": composite.Missing,
	}).Debug("Management quality scored")

	return composite, nil
}

// tenureStability: 0 years → 0, good (3y) → 60, top (5y+) → 100, linear
// between the anchors.
func (m *ManagementScorer) tenureStability(in ManagementInputs) contracts.ComponentScore {
	c := contracts.ComponentScore{Name: "tenure_stability"}
	if !in.CEOTenureYears.Valid && !in.CFOTenureYears.Valid {
		c.Explanation = "no tenure data"
		return c
	}

	var sum, count float64
	for _, t := range []contracts.Metric{in.CEOTenureYears, in.CFOTenureYears} {
		if t.Valid {
			sum += t.Float64
			count++
		}
	}
	avg := sum / count

	var score float64
	switch {
	case avg >= m.cfg.TenureTopYears:
		score = 100
	case avg >= m.cfg.TenureGoodYears:
		score = 60 + 40*(avg-m.cfg.TenureGoodYears)/(m.cfg.TenureTopYears-m.cfg.TenureGoodYears)
	default:
		score = avg / m.cfg.TenureGoodYears * 60
	}

	c.Score = contracts.Num(clamp(score, 0, 100))
	c.Explanation = fmt.Sprintf("average tenure %.1f years", avg)
	return c
}

// boardIndependence normalizes the independent-director ratio over
// [0, target] and applies the family-control penalty.
func (m *ManagementScorer) boardIndependence(in ManagementInputs) contracts.ComponentScore {
	c := contracts.ComponentScore{Name: "board_independence"}
	if !in.IndependenceRatio.Valid {
		c.Explanation = "no board composition data"
		return c
	}

	score := clamp(in.IndependenceRatio.Float64/m.cfg.IndependenceTarget*100, 0, 100)
	if in.FamilyControlled {
		score *= 0.7
	}

	c.Score = contracts.Num(score)
	c.Explanation = fmt.Sprintf("independence ratio %.0f%%", in.IndependenceRatio.Float64*100)
	return c
}

// insiderAlignment maps net insider transactions onto the step table:
// strong buying 100, neutral 60, strong selling 0.
func (m *ManagementScorer) insiderAlignment(in ManagementInputs) contracts.ComponentScore {
	c := contracts.ComponentScore{Name: "insider_alignment"}
	if !in.InsiderBuys.Valid || !in.InsiderSells.Valid {
		c.Explanation = "no insider transaction data"
		return c
	}

	net := in.InsiderBuys.Float64 - in.InsiderSells.Float64
	var score float64
	switch {
	case net >= 5:
		score = 100
	case net >= 2:
		score = 80
	case net >= 0:
		score = 60
	case net >= -2:
		score = 40
	case net >= -5:
		score = 20
	default:
		score = 0
	}

	c.Score = contracts.Num(score)
	c.Explanation = fmt.Sprintf("net insider transactions %+.0f", net)
	return c
}

// governance inverts the red-flag count: 0 flags 100, 1 flag 70,
// 2 flags 40, then −20 per additional flag down to 0.
func (m *ManagementScorer) governance(in ManagementInputs) contracts.ComponentScore {
	c := contracts.ComponentScore{Name: "governance"}
	counts := []contracts.Metric{in.GovernanceIncidents, in.AuditIssues, in.RelatedPartyTransactions}

	// Absent counts are treated as zero unless every count is absent;
	// the upstream format does not distinguish "no incidents" from
	// "not reported" on a per-field basis.
	anyValid := false
	flags := 0.0
	for _, n := range counts {
		if n.Valid {
			anyValid = true
			flags += n.Float64
		}
	}
	if !anyValid {
		c.Explanation = "no governance data"
		return c
	}

	var score float64
	switch {
	case flags == 0:
		score = 100
	case flags == 1:
		score = 70
	case flags == 2:
		score = 40
	default:
		score = clamp(40-(flags-2)*20, 0, 100)
	}

	c.Score = contracts.Num(score)
	c.Explanation = fmt.Sprintf("%.0f red flag(s)", flags)
	return c
}
