// Package derive computes the secondary ratios and margins of a single
// snapshot. Everything here is a pure function of the raw line items:
// no I/O, no state, and re-derivation is bit-identical.
package derive

import "github.com/finlens/backend/internal/contracts"

// Metrics derives the full sub-record from a snapshot's raw fields.
// Any ratio with a zero or missing denominator is undefined, never zero.
// ROE and ROA are annualized from the quarterly figure (×4); margins and
// leverage ratios are percentages.
func Metrics(raw contracts.RawLineItems) contracts.DerivedMetrics {
	return contracts.DerivedMetrics{
		GrossMargin:     contracts.Ratio(raw.GrossProfit, raw.NetRevenue).Scale(100),
		OperatingMargin: contracts.Ratio(raw.OperatingIncome, raw.NetRevenue).Scale(100),
		NetMargin:       contracts.Ratio(raw.NetIncome, raw.NetRevenue).Scale(100),
		ROE:             contracts.Ratio(raw.NetIncome, raw.Equity).Scale(100 * 4),
		ROA:             contracts.Ratio(raw.NetIncome, raw.TotalAssets).Scale(100 * 4),
		CurrentRatio:    contracts.Ratio(raw.CurrentAssets, raw.CurrentLiabilities),
		DebtRatio:       contracts.Ratio(raw.TotalLiabilities, raw.TotalAssets).Scale(100),
		EquityRatio:     contracts.Ratio(raw.Equity, raw.TotalAssets).Scale(100),
		AccrualRatio:    contracts.Ratio(raw.NetIncome.Sub(raw.OperatingCashFlow), raw.TotalAssets),
	}
}

// Enrich returns a copy of the snapshot with the derived sub-record
// populated. The input is not mutated; currency and unit pass through
// unchanged.
func Enrich(s *contracts.Snapshot) *contracts.Snapshot {
	out := *s
	derived := Metrics(s.Raw)
	out.Derived = &derived
	return &out
}
