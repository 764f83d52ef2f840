package derive

import (
	"fmt"
	"sort"

	"github.com/finlens/backend/internal/contracts"
)

// MetricDef describes one named metric: how to read it off a snapshot and
// which direction counts as improvement.
type MetricDef struct {
	Name           string
	HigherIsBetter bool
	Extract        func(*contracts.Snapshot) contracts.Metric
}

// The registry is the shared vocabulary of metric names used by the
// trend analyzer, peer normalizer, factor engine, and API layer. Derived
// metrics are computed on the fly so callers do not need pre-enriched
// snapshots.
var registry = map[string]MetricDef{
	"net_revenue":          {Name: "net_revenue", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.NetRevenue }},
	"gross_profit":         {Name: "gross_profit", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.GrossProfit }},
	"operating_income":     {Name: "operating_income", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.OperatingIncome }},
	"net_income":           {Name: "net_income", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.NetIncome }},
	"eps":                  {Name: "eps", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.EPS }},
	"operating_cash_flow":  {Name: "operating_cash_flow", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.OperatingCashFlow }},
	"cash_and_equivalents": {Name: "cash_and_equivalents", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.CashAndEquivalents }},
	"accounts_receivable":  {Name: "accounts_receivable", HigherIsBetter: false, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.AccountsReceivable }},
	"inventory":            {Name: "inventory", HigherIsBetter: false, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.Inventory }},
	"total_assets":         {Name: "total_assets", HigherIsBetter: true, Extract: func(s *contracts.Snapshot) contracts.Metric { return s.Raw.TotalAssets }},

	"gross_margin":     {Name: "gross_margin", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.GrossMargin })},
	"operating_margin": {Name: "operating_margin", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.OperatingMargin })},
	"net_margin":       {Name: "net_margin", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.NetMargin })},
	"roe":              {Name: "roe", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.ROE })},
	"roa":              {Name: "roa", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.ROA })},
	"current_ratio":    {Name: "current_ratio", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.CurrentRatio })},
	"debt_ratio":       {Name: "debt_ratio", HigherIsBetter: false, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.DebtRatio })},
	"equity_ratio":     {Name: "equity_ratio", HigherIsBetter: true, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.EquityRatio })},
	"accrual_ratio":    {Name: "accrual_ratio", HigherIsBetter: false, Extract: derivedField(func(d contracts.DerivedMetrics) contracts.Metric { return d.AccrualRatio })},
}

func derivedField(pick func(contracts.DerivedMetrics) contracts.Metric) func(*contracts.Snapshot) contracts.Metric {
	return func(s *contracts.Snapshot) contracts.Metric {
		if s.Derived != nil {
			return pick(*s.Derived)
		}
		return pick(Metrics(s.Raw))
	}
}

// Lookup returns the definition for a metric name.
func Lookup(name string) (MetricDef, error) {
	def, ok := registry[name]
	if !ok {
		return MetricDef{}, fmt.Errorf("unknown metric %q", name)
	}
	return def, nil
}

// MetricNames returns all registered metric names, sorted.
func MetricNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
