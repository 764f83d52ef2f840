// Package ews evaluates the early-warning rule catalog against an
// entity's latest snapshot and its history.
package ews

import (
	"context"
	"fmt"
	"sort"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
	"github.com/finlens/backend/pkg/logger"
)

// ExtraSignals are observations outside the financial statements that
// some rules consume. Absent signals skip their rules instead of
// triggering or passing them.
type ExtraSignals struct {
	GovernanceIncidents contracts.Metric `json:"governance_incidents"`
}

// ruleContext bundles everything a rule may look at.
type ruleContext struct {
	current *contracts.Snapshot
	prev    *contracts.Snapshot // nil when the series has one point
	history []*contracts.Snapshot
	extra   ExtraSignals
}

// rule is one catalog entry. eval returns the triggered flag (nil when
// the rule passes) or a skip record when an input is undefined.
type rule struct {
	id   string
	eval func(e *Engine, rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule)
}

// Engine runs the warning catalog. Rules are independent: one rule's
// skip never suppresses another's flag.
type Engine struct {
	cfg     analysisconfig.Warning
	catalog []rule
	log     *logger.Logger
}

// NewEngine creates an engine with the full rule catalog.
func NewEngine(cfg analysisconfig.Warning, log *logger.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		catalog: []rule{
			{"liquidity_deterioration", (*Engine).liquidityDeterioration},
			{"leverage_spike", (*Engine).leverageSpike},
			{"high_leverage", (*Engine).highLeverage},
			{"earnings_cash_divergence", (*Engine).earningsCashDivergence},
			{"receivables_spike", (*Engine).receivablesSpike},
			{"inventory_buildup", (*Engine).inventoryBuildup},
			{"margin_compression", (*Engine).marginCompression},
			{"cash_depletion", (*Engine).cashDepletion},
			{"negative_operating_cash_flow", (*Engine).negativeOperatingCashFlow},
			{"governance_incidents", (*Engine).governanceIncidents},
		},
		log: log,
	}
}

// Evaluate runs every rule against the last snapshot of the series.
// Flags are ordered by severity (critical first), then rule id, so the
// report is stable for identical inputs. Overall is the maximum flag
// severity, none when nothing triggered.
func (e *Engine) Evaluate(ctx context.Context, series *contracts.TrendSeries, extra ExtraSignals) (*contracts.EarlyWarningReport, error) {
	if series == nil || len(series.Snapshots) == 0 {
		return nil, &contracts.MissingInputError{Field: "series"}
	}

	rc := ruleContext{
		current: series.Snapshots[len(series.Snapshots)-1],
		history: series.Snapshots[:len(series.Snapshots)-1],
		extra:   extra,
	}
	if len(series.Snapshots) > 1 {
		rc.prev = series.Snapshots[len(series.Snapshots)-2]
	}

	report := &contracts.EarlyWarningReport{
		EntityID: rc.current.EntityID,
		Period:   rc.current.Period,
		Flags:    []contracts.WarningFlag{},
	}

	for _, r := range e.catalog {
		flag, skipped := r.eval(e, rc)
		if skipped != nil {
			skipped.RuleID = r.id
			report.Skipped = append(report.Skipped, *skipped)
			continue
		}
		report.Evaluated = append(report.Evaluated, r.id)
		if flag != nil {
			flag.RuleID = r.id
			report.Flags = append(report.Flags, *flag)
			if flag.Severity > report.Overall {
				report.Overall = flag.Severity
			}
		}
	}

	sort.Slice(report.Flags, func(i, j int) bool {
		if report.Flags[i].Severity != report.Flags[j].Severity {
			return report.Flags[i].Severity > report.Flags[j].Severity
		}
		return report.Flags[i].RuleID < report.Flags[j].RuleID
	})

	e.log.WithFields(map[string]interface{}{
		"entity":  report.EntityID,
		"period":  report.Period.String(),
		"flags":   len(report.Flags),
		"overall": report.Overall,
	}).Debug("Early warning evaluation completed")

	return report, nil
}

// liquidityDeterioration: current ratio under the floor while also lower
// than the prior period. A low but recovering ratio does not flag.
func (e *Engine) liquidityDeterioration(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	cur := derivedOf(rc.current).CurrentRatio
	if !cur.Valid {
		return nil, skip("current ratio unavailable")
	}
	if rc.prev == nil {
		return nil, skip("no prior period")
	}
	prev := derivedOf(rc.prev).CurrentRatio
	if !prev.Valid {
		return nil, skip("prior current ratio unavailable")
	}

	if cur.Float64 < e.cfg.CurrentRatioFloor && cur.Float64 < prev.Float64 {
		return &contracts.WarningFlag{
			Severity:  contracts.SeverityWarning,
			Metrics:   map[string]float64{"current_ratio": cur.Float64, "prior_current_ratio": prev.Float64},
			Threshold: e.cfg.CurrentRatioFloor,
			Description: fmt.Sprintf("current ratio %.2f is below %.2f and deteriorating from %.2f",
				cur.Float64, e.cfg.CurrentRatioFloor, prev.Float64),
		}, nil
	}
	return nil, nil
}

// leverageSpike: debt ratio jumped by the configured points versus the
// prior period.
func (e *Engine) leverageSpike(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	cur := derivedOf(rc.current).DebtRatio
	if !cur.Valid {
		return nil, skip("debt ratio unavailable")
	}
	if rc.prev == nil {
		return nil, skip("no prior period")
	}
	prev := derivedOf(rc.prev).DebtRatio
	if !prev.Valid {
		return nil, skip("prior debt ratio unavailable")
	}

	if delta := cur.Float64 - prev.Float64; delta >= e.cfg.LeverageSpikePts {
		return &contracts.WarningFlag{
			Severity:  contracts.SeverityWarning,
			Metrics:   map[string]float64{"debt_ratio": cur.Float64, "prior_debt_ratio": prev.Float64},
			Threshold: e.cfg.LeverageSpikePts,
			Description: fmt.Sprintf("debt ratio rose %.1f points to %.1f%% in one period",
				delta, cur.Float64),
		}, nil
	}
	return nil, nil
}

// highLeverage: absolute debt ratio bands, warning then critical.
func (e *Engine) highLeverage(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	cur := derivedOf(rc.current).DebtRatio
	if !cur.Valid {
		return nil, skip("debt ratio unavailable")
	}

	switch {
	case cur.Float64 >= e.cfg.DebtRatioCriticalPct:
		return &contracts.WarningFlag{
			Severity:    contracts.SeverityCritical,
			Metrics:     map[string]float64{"debt_ratio": cur.Float64},
			Threshold:   e.cfg.DebtRatioCriticalPct,
			Description: fmt.Sprintf("debt ratio %.1f%% exceeds the critical level %.0f%%", cur.Float64, e.cfg.DebtRatioCriticalPct),
		}, nil
	case cur.Float64 >= e.cfg.DebtRatioHighPct:
		return &contracts.WarningFlag{
			Severity:    contracts.SeverityWarning,
			Metrics:     map[string]float64{"debt_ratio": cur.Float64},
			Threshold:   e.cfg.DebtRatioHighPct,
			Description: fmt.Sprintf("debt ratio %.1f%% exceeds %.0f%%", cur.Float64, e.cfg.DebtRatioHighPct),
		}, nil
	}
	return nil, nil
}

// earningsCashDivergence: net income growing while operating cash flow
// shrinks, the classic accrual red flag.
func (e *Engine) earningsCashDivergence(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	if rc.prev == nil {
		return nil, skip("no prior period")
	}
	niGrowth := rc.current.Raw.NetIncome.GrowthPct(rc.prev.Raw.NetIncome)
	ocfGrowth := rc.current.Raw.OperatingCashFlow.GrowthPct(rc.prev.Raw.OperatingCashFlow)
	if !niGrowth.Valid || !ocfGrowth.Valid {
		return nil, skip("net income or operating cash flow growth unavailable")
	}

	if niGrowth.Float64 >= e.cfg.DivergenceGrowthMinPct && ocfGrowth.Float64 < 0 {
		return &contracts.WarningFlag{
			Severity:  contracts.SeverityWarning,
			Metrics:   map[string]float64{"net_income_growth_pct": niGrowth.Float64, "ocf_growth_pct": ocfGrowth.Float64},
			Threshold: e.cfg.DivergenceGrowthMinPct,
			Description: fmt.Sprintf("net income grew %.1f%% while operating cash flow fell %.1f%%",
				niGrowth.Float64, -ocfGrowth.Float64),
		}, nil
	}
	return nil, nil
}

// receivablesSpike: receivables outgrowing revenue by the spike margin.
func (e *Engine) receivablesSpike(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	return e.outgrowthRule(rc, "receivables", e.cfg.ReceivableSpikePct, contracts.SeverityWarning,
		func(s *contracts.Snapshot) contracts.Metric { return s.Raw.AccountsReceivable })
}

// inventoryBuildup: inventory outgrowing revenue by the spike margin.
func (e *Engine) inventoryBuildup(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	return e.outgrowthRule(rc, "inventory", e.cfg.InventorySpikePct, contracts.SeverityInfo,
		func(s *contracts.Snapshot) contracts.Metric { return s.Raw.Inventory })
}

// outgrowthRule is the shared receivables/inventory shape: the balance
// item grows faster than revenue by at least the configured margin.
func (e *Engine) outgrowthRule(rc ruleContext, name string, marginPct float64, severity contracts.Severity, item func(*contracts.Snapshot) contracts.Metric) (*contracts.WarningFlag, *contracts.SkippedRule) {
	if rc.prev == nil {
		return nil, skip("no prior period")
	}
	itemGrowth := item(rc.current).GrowthPct(item(rc.prev))
	revenueGrowth := rc.current.Raw.NetRevenue.GrowthPct(rc.prev.Raw.NetRevenue)
	if !itemGrowth.Valid || !revenueGrowth.Valid {
		return nil, skip(name + " or revenue growth unavailable")
	}

	if itemGrowth.Float64 > revenueGrowth.Float64+marginPct {
		return &contracts.WarningFlag{
			Severity:  severity,
			Metrics:   map[string]float64{name + "_growth_pct": itemGrowth.Float64, "revenue_growth_pct": revenueGrowth.Float64},
			Threshold: marginPct,
			Description: fmt.Sprintf("%s grew %.1f%% against revenue growth of %.1f%%",
				name, itemGrowth.Float64, revenueGrowth.Float64),
		}, nil
	}
	return nil, nil
}

// marginCompression: operating margin below the trailing average by the
// configured points. Needs at least two defined trailing margins.
func (e *Engine) marginCompression(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	cur := derivedOf(rc.current).OperatingMargin
	if !cur.Valid {
		return nil, skip("operating margin unavailable")
	}

	var trailing []float64
	for _, s := range rc.history {
		if m := derivedOf(s).OperatingMargin; m.Valid {
			trailing = append(trailing, m.Float64)
		}
	}
	if len(trailing) < 2 {
		return nil, skip("insufficient trailing margins")
	}

	avg := 0.0
	for _, m := range trailing {
		avg += m
	}
	avg /= float64(len(trailing))

	if avg-cur.Float64 >= e.cfg.MarginCompressionPts {
		return &contracts.WarningFlag{
			Severity:  contracts.SeverityWarning,
			Metrics:   map[string]float64{"operating_margin": cur.Float64, "trailing_average": avg},
			Threshold: e.cfg.MarginCompressionPts,
			Description: fmt.Sprintf("operating margin %.1f%% is %.1f points below its trailing average %.1f%%",
				cur.Float64, avg-cur.Float64, avg),
		}, nil
	}
	return nil, nil
}

// cashDepletion: cash balance down by the configured share in one period.
func (e *Engine) cashDepletion(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	if rc.prev == nil {
		return nil, skip("no prior period")
	}
	growth := rc.current.Raw.CashAndEquivalents.GrowthPct(rc.prev.Raw.CashAndEquivalents)
	if !growth.Valid {
		return nil, skip("cash balance unavailable")
	}

	if -growth.Float64 >= e.cfg.CashDepletionPct {
		return &contracts.WarningFlag{
			Severity:    contracts.SeverityWarning,
			Metrics:     map[string]float64{"cash_growth_pct": growth.Float64},
			Threshold:   e.cfg.CashDepletionPct,
			Description: fmt.Sprintf("cash and equivalents fell %.1f%% in one period", -growth.Float64),
		}, nil
	}
	return nil, nil
}

// negativeOperatingCashFlow: one negative period is informational; two in
// a row is a warning.
func (e *Engine) negativeOperatingCashFlow(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	ocf := rc.current.Raw.OperatingCashFlow
	if !ocf.Valid {
		return nil, skip("operating cash flow unavailable")
	}
	if ocf.Float64 >= 0 {
		return nil, nil
	}

	severity := contracts.SeverityInfo
	desc := "operating cash flow is negative"
	if rc.prev != nil && rc.prev.Raw.OperatingCashFlow.Valid && rc.prev.Raw.OperatingCashFlow.Float64 < 0 {
		severity = contracts.SeverityWarning
		desc = "operating cash flow is negative for a second consecutive period"
	}
	return &contracts.WarningFlag{
		Severity:    severity,
		Metrics:     map[string]float64{"operating_cash_flow": ocf.Float64},
		Threshold:   0,
		Description: desc,
	}, nil
}

// governanceIncidents: reported incidents escalate from warning to
// critical at three. An unreported count skips the rule.
func (e *Engine) governanceIncidents(rc ruleContext) (*contracts.WarningFlag, *contracts.SkippedRule) {
	incidents := rc.extra.GovernanceIncidents
	if !incidents.Valid {
		return nil, skip("governance incidents not reported")
	}
	if incidents.Float64 < 1 {
		return nil, nil
	}

	severity := contracts.SeverityWarning
	if incidents.Float64 >= 3 {
		severity = contracts.SeverityCritical
	}
	return &contracts.WarningFlag{
		Severity:    severity,
		Metrics:     map[string]float64{"governance_incidents": incidents.Float64},
		Threshold:   1,
		Description: fmt.Sprintf("%.0f governance incident(s) reported this period", incidents.Float64),
	}, nil
}

func derivedOf(s *contracts.Snapshot) contracts.DerivedMetrics {
	if s.Derived != nil {
		return *s.Derived
	}
	return derive.Metrics(s.Raw)
}

func skip(reason string) *contracts.SkippedRule {
	return &contracts.SkippedRule{Reason: reason}
}
