package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

// EarningsScorer produces the earnings-quality composite from the current
// snapshot plus the entity's history (ordered ascending, current last).
type EarningsScorer struct {
	cfg analysisconfig.Earnings
	log *logger.Logger
}

// NewEarningsScorer creates a scorer with explicit configuration.
func NewEarningsScorer(cfg analysisconfig.Earnings, log *logger.Logger) *EarningsScorer {
	return &EarningsScorer{cfg: cfg, log: log}
}

// Score computes accrual quality, working-capital behavior, one-off
// dependency (inverted), and earnings stability, then composes them.
// A component whose inputs are missing stays undefined, and with it the
// composite, rather than being substituted with a neutral value.
func (e *EarningsScorer) Score(ctx context.Context, current *contracts.Snapshot, history []*contracts.Snapshot) (*contracts.CompositeScore, error) {
	if current == nil {
		return nil, &contracts.MissingInputError{Field: "snapshot"}
	}

	var redFlags []string

	accrual, flags := e.accrualQuality(current)
	redFlags = append(redFlags, flags...)

	wc, flags := e.workingCapital(current, history)
	redFlags = append(redFlags, flags...)

	oneOff, flags := e.oneOffDependency(current)
	redFlags = append(redFlags, flags...)

	stability, flags := e.earningsStability(history)
	redFlags = append(redFlags, flags...)

	composite, err := Compose("earnings_quality",
		[]contracts.ComponentScore{accrual, wc, oneOff, stability}, e.cfg.Weights)
	if err != nil {
		return nil, err
	}
	composite.RedFlags = redFlags

	e.log.WithFields(map[string]interface{}{
		"entity":    current.EntityID,
		"period":    current.Period.String(),
		"total":     composite.Total,
		"red_flags": len(redFlags),
	}).Debug("Earnings quality scored")

	return composite, nil
}

// accrualQuality scores |NI − OCF| / total assets against the threshold
// steps: under half the threshold 100, under it 75, under 2× 50, else 20.
func (e *EarningsScorer) accrualQuality(s *contracts.Snapshot) (contracts.ComponentScore, []string) {
	c := contracts.ComponentScore{Name: "accrual_quality"}

	ratio := contracts.Ratio(s.Raw.NetIncome.Sub(s.Raw.OperatingCashFlow), s.Raw.TotalAssets)
	if !ratio.Valid {
		c.Explanation = "operating cash flow or total assets unavailable"
		return c, nil
	}

	abs := math.Abs(ratio.Float64)
	t := e.cfg.AccrualThreshold
	var flags []string
	switch {
	case abs >= t*2:
		c.Score = contracts.Num(20)
		flags = append(flags, fmt.Sprintf("very high accruals (%.1f%% of assets)", abs*100))
	case abs >= t:
		c.Score = contracts.Num(50)
		flags = append(flags, fmt.Sprintf("elevated accruals (%.1f%% of assets)", abs*100))
	case abs >= t/2:
		c.Score = contracts.Num(75)
	default:
		c.Score = contracts.Num(100)
	}
	c.Explanation = fmt.Sprintf("accrual ratio %.3f", ratio.Float64)
	return c, flags
}

// workingCapital penalizes receivables or inventory growing faster than
// revenue by more than the spike threshold (−25 each).
func (e *EarningsScorer) workingCapital(current *contracts.Snapshot, history []*contracts.Snapshot) (contracts.ComponentScore, []string) {
	c := contracts.ComponentScore{Name: "working_capital"}

	previous := previousSnapshot(current, history)
	if previous == nil {
		c.Explanation = "no prior period for comparison"
		return c, nil
	}

	revenueGrowth := current.Raw.NetRevenue.GrowthPct(previous.Raw.NetRevenue)
	receivableGrowth := current.Raw.AccountsReceivable.GrowthPct(previous.Raw.AccountsReceivable)
	inventoryGrowth := current.Raw.Inventory.GrowthPct(previous.Raw.Inventory)
	if !revenueGrowth.Valid {
		c.Explanation = "revenue growth unavailable"
		return c, nil
	}

	threshold := e.cfg.WCSpikeThreshold * 100
	score := 100.0
	var flags []string

	if receivableGrowth.Valid && receivableGrowth.Float64 > revenueGrowth.Float64+threshold {
		score -= 25
		flags = append(flags, fmt.Sprintf("receivables growing faster than revenue (%.1f%% vs %.1f%%)",
			receivableGrowth.Float64, revenueGrowth.Float64))
	}
	if inventoryGrowth.Valid && inventoryGrowth.Float64 > revenueGrowth.Float64+threshold {
		score -= 25
		flags = append(flags, fmt.Sprintf("inventory growing faster than revenue (%.1f%% vs %.1f%%)",
			inventoryGrowth.Float64, revenueGrowth.Float64))
	}

	c.Score = contracts.Num(clamp(score, 0, 100))
	c.Explanation = fmt.Sprintf("revenue growth %.1f%%", revenueGrowth.Float64)
	return c, flags
}

// oneOffDependency scores the non-operating share of net income,
// |NI − OI| / |NI|, inverted: the larger the one-off share, the lower the
// score.
func (e *EarningsScorer) oneOffDependency(s *contracts.Snapshot) (contracts.ComponentScore, []string) {
	c := contracts.ComponentScore{Name: "one_off_dependency"}

	if !s.Raw.NetIncome.Valid || !s.Raw.OperatingIncome.Valid {
		c.Explanation = "net or operating income unavailable"
		return c, nil
	}
	if s.Raw.NetIncome.Float64 == 0 {
		c.Explanation = "net income is zero"
		return c, nil
	}

	ratio := math.Abs(s.Raw.NetIncome.Float64-s.Raw.OperatingIncome.Float64) / math.Abs(s.Raw.NetIncome.Float64)
	t := e.cfg.OneOffThreshold
	var flags []string
	switch {
	case ratio >= t*2:
		c.Score = contracts.Num(20)
		flags = append(flags, fmt.Sprintf("high non-operating income dependency (%.1f%%)", ratio*100))
	case ratio >= t:
		c.Score = contracts.Num(50)
		flags = append(flags, fmt.Sprintf("moderate non-operating income (%.1f%%)", ratio*100))
	case ratio >= t/2:
		c.Score = contracts.Num(75)
	default:
		c.Score = contracts.Num(100)
	}
	c.Explanation = fmt.Sprintf("one-off share %.1f%%", ratio*100)
	return c, flags
}

// earningsStability scores the coefficient of variation of net income
// over the configured minimum history length.
func (e *EarningsScorer) earningsStability(history []*contracts.Snapshot) (contracts.ComponentScore, []string) {
	c := contracts.ComponentScore{Name: "earnings_stability"}

	var earnings []float64
	for _, s := range history {
		if s.Raw.NetIncome.Valid {
			earnings = append(earnings, s.Raw.NetIncome.Float64)
		}
	}
	if len(earnings) < e.cfg.StabilityMinPeriods {
		c.Explanation = fmt.Sprintf("%d defined period(s), need %d", len(earnings), e.cfg.StabilityMinPeriods)
		return c, nil
	}

	cv, ok := coefficientOfVariation(earnings)
	if !ok {
		c.Explanation = "mean earnings are zero"
		return c, nil
	}

	var flags []string
	switch {
	case cv <= 0.1:
		c.Score = contracts.Num(100)
	case cv <= 0.2:
		c.Score = contracts.Num(80)
	case cv <= 0.3:
		c.Score = contracts.Num(60)
	case cv <= 0.5:
		c.Score = contracts.Num(40)
		flags = append(flags, fmt.Sprintf("high earnings volatility (CV %.1f%%)", cv*100))
	default:
		c.Score = contracts.Num(20)
		flags = append(flags, fmt.Sprintf("very high earnings volatility (CV %.1f%%)", cv*100))
	}
	c.Explanation = fmt.Sprintf("earnings CV %.2f over %d periods", cv, len(earnings))
	return c, flags
}

// previousSnapshot returns the latest history entry strictly before the
// current period.
func previousSnapshot(current *contracts.Snapshot, history []*contracts.Snapshot) *contracts.Snapshot {
	var prev *contracts.Snapshot
	for _, s := range history {
		if s.Period.Before(current.Period) && (prev == nil || prev.Period.Before(s.Period)) {
			prev = s
		}
	}
	return prev
}

// coefficientOfVariation returns stdev/|mean| as a dispersion measure.
func coefficientOfVariation(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0, false
	}

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values) - 1)

	return math.Sqrt(variance) / math.Abs(mean), true
}
