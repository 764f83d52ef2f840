// Package valuation computes ROIC vs WACC value-creation analysis and
// the capital allocation breakdown.
package valuation

import (
	"context"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

// CapitalInputs are the cost-of-capital parameters supplied by the
// caller; the engine never derives them from the data. Rates are
// fractions (0.10 = 10%). Capital structure weights are optional; when
// absent they fall back to the balance-sheet split.
type CapitalInputs struct {
	CostOfEquity     contracts.Metric `json:"cost_of_equity"`
	CostOfDebtPretax contracts.Metric `json:"cost_of_debt_pretax"`
	TaxRate          contracts.Metric `json:"tax_rate"`
	EquityWeight     contracts.Metric `json:"equity_weight"`
	DebtWeight       contracts.Metric `json:"debt_weight"`
}

// Analyzer computes value-creation results under explicit verdict bands.
type Analyzer struct {
	cfg analysisconfig.Valuation
	log *logger.Logger
}

// NewAnalyzer creates an analyzer with explicit configuration.
func NewAnalyzer(cfg analysisconfig.Valuation, log *logger.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, log: log}
}

// Analyze computes ROIC = NOPAT / invested capital, WACC from the
// supplied cost inputs, and the spread verdict. Missing cost inputs are
// MissingInputError; an unavailable balance sheet leaves ROIC (and the
// spread) undefined rather than zero.
func (a *Analyzer) Analyze(ctx context.Context, s *contracts.Snapshot, in CapitalInputs) (*contracts.ValueCreationResult, error) {
	if s == nil {
		return nil, &contracts.MissingInputError{Field: "snapshot"}
	}
	for field, m := range map[string]contracts.Metric{
		"cost_of_equity":      in.CostOfEquity,
		"cost_of_debt_pretax": in.CostOfDebtPretax,
		"tax_rate":            in.TaxRate,
	} {
		if !m.Valid {
			return nil, &contracts.MissingInputError{
				Field:    field,
				EntityID: s.EntityID,
				Period:   s.Period.String(),
			}
		}
	}

	taxRate := in.TaxRate.Float64

	// ROIC: NOPAT / invested capital, simplified to equity + total
	// liabilities for invested capital.
	nopat := s.Raw.OperatingIncome.Scale(1 - taxRate)
	investedCapital := addMetric(s.Raw.Equity, s.Raw.TotalLiabilities)
	roic := contracts.Ratio(nopat, investedCapital).Scale(100)

	// Capital structure weights: supplied, or from the balance sheet.
	equityWeight, debtWeight := in.EquityWeight, in.DebtWeight
	if !equityWeight.Valid || !debtWeight.Valid {
		equityWeight = contracts.Ratio(s.Raw.Equity, investedCapital)
		debtWeight = contracts.Ratio(s.Raw.TotalLiabilities, investedCapital)
	}

	var wacc contracts.Metric
	if equityWeight.Valid && debtWeight.Valid {
		afterTaxDebt := in.CostOfDebtPretax.Float64 * (1 - taxRate)
		wacc = contracts.Num((equityWeight.Float64*in.CostOfEquity.Float64 +
			debtWeight.Float64*afterTaxDebt) * 100)
	}

	spread := roic.Sub(wacc)

	result := &contracts.ValueCreationResult{
		EntityID:        s.EntityID,
		Period:          s.Period,
		NOPAT:           nopat,
		InvestedCapital: investedCapital,
		ROICPct:         roic,
		WACCPct:         wacc,
		SpreadPct:       spread,
		Verdict:         a.verdict(spread),
		Assumptions: map[string]float64{
			"cost_of_equity":      in.CostOfEquity.Float64,
			"cost_of_debt_pretax": in.CostOfDebtPretax.Float64,
			"tax_rate":            taxRate,
		},
	}

	a.log.WithFields(map[string]interface{}{
		"entity":  s.EntityID,
		"period":  s.Period.String(),
		"roic":    roic,
		"wacc":    wacc,
		"verdict": result.Verdict,
	}).Debug("Value creation analyzed")

	return result, nil
}

// verdict applies the configured spread cut points. An undefined spread
// is neutral: no claim either way.
func (a *Analyzer) verdict(spread contracts.Metric) contracts.ValueCreationVerdict {
	if !spread.Valid {
		return contracts.ValueNeutral
	}
	switch {
	case spread.Float64 > a.cfg.CreatingMinSpreadPct:
		return contracts.ValueCreating
	case spread.Float64 < a.cfg.DestroyingMaxSpreadPct:
		return contracts.ValueDestroying
	default:
		return contracts.ValueNeutral
	}
}

// CostOfEquityCAPM is the CAPM helper: rf + beta × market risk premium,
// using the configured rate assumptions.
func (a *Analyzer) CostOfEquityCAPM(beta float64) float64 {
	return a.cfg.RiskFreeRate + beta*a.cfg.MarketRiskPremium
}

// EstimateCostOfDebt is a leverage-spread heuristic for callers without
// an observed borrowing rate: 3% base plus up to 5 points with leverage.
func EstimateCostOfDebt(s *contracts.Snapshot) contracts.Metric {
	debtRatio := contracts.Ratio(s.Raw.TotalLiabilities, s.Raw.TotalAssets)
	if !debtRatio.Valid {
		return contracts.Undefined()
	}
	return contracts.Num(0.03 + debtRatio.Float64*0.05)
}

func addMetric(a, b contracts.Metric) contracts.Metric {
	if !a.Valid || !b.Valid {
		return contracts.Undefined()
	}
	return contracts.Num(a.Float64 + b.Float64)
}
