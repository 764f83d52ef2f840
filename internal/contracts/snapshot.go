package contracts

// Snapshot is one entity's financial statement data for one period: raw
// line items plus the derived sub-record filled in by the deriver. A
// snapshot is treated as immutable once derived; re-derivation from the
// same raw fields produces bit-identical results.
type Snapshot struct {
	EntityID    string `json:"entity_id"`
	CompanyName string `json:"company_name"`
	Period      Period `json:"period"`
	Currency    string `json:"currency"`
	Unit        string `json:"unit"` // thousand, million, billion

	Raw     RawLineItems    `json:"raw"`
	Derived *DerivedMetrics `json:"derived,omitempty"`
}

// RawLineItems is the fixed set of raw statement fields. Every field is
// individually optional; an absent field is an undefined Metric, which is
// distinct from a present zero.
type RawLineItems struct {
	// Balance sheet
	CashAndEquivalents Metric `json:"cash_and_equivalents"`
	AccountsReceivable Metric `json:"accounts_receivable"`
	Inventory          Metric `json:"inventory"`
	CurrentAssets      Metric `json:"current_assets"`
	CurrentLiabilities Metric `json:"current_liabilities"`
	TotalAssets        Metric `json:"total_assets"`
	TotalLiabilities   Metric `json:"total_liabilities"`
	Equity             Metric `json:"equity"`
	ShortTermDebt      Metric `json:"short_term_debt"`
	LongTermDebt       Metric `json:"long_term_debt"`
	RetainedEarnings   Metric `json:"retained_earnings"`

	// Income statement
	NetRevenue      Metric `json:"net_revenue"`
	GrossProfit     Metric `json:"gross_profit"`
	OperatingIncome Metric `json:"operating_income"`
	NetIncome       Metric `json:"net_income"`
	EPS             Metric `json:"eps"`

	// Cash flow
	OperatingCashFlow Metric `json:"operating_cash_flow"`
	InvestingCashFlow Metric `json:"investing_cash_flow"`
	FinancingCashFlow Metric `json:"financing_cash_flow"`
}

// DerivedMetrics is the derived sub-record: a pure function of the raw
// fields. Margins and return/leverage ratios are percentages; the current
// ratio is a plain multiple.
type DerivedMetrics struct {
	GrossMargin     Metric `json:"gross_margin"`
	OperatingMargin Metric `json:"operating_margin"`
	NetMargin       Metric `json:"net_margin"`
	ROE             Metric `json:"roe"`
	ROA             Metric `json:"roa"`
	CurrentRatio    Metric `json:"current_ratio"`
	DebtRatio       Metric `json:"debt_ratio"`
	EquityRatio     Metric `json:"equity_ratio"`
	AccrualRatio    Metric `json:"accrual_ratio"`
}

// TrendSeries is an ordered sequence of snapshots for one entity,
// strictly increasing by period. Interior gaps are permitted; they are
// reported by the trend analyzer, never interpolated.
type TrendSeries struct {
	EntityID  string      `json:"entity_id"`
	Snapshots []*Snapshot `json:"snapshots"`
}

// PeerSet is an unordered collection of snapshots for distinct entities
// sharing one period.
type PeerSet struct {
	Period    Period      `json:"period"`
	Snapshots []*Snapshot `json:"snapshots"`
}

// CheckUniformUnits verifies that every snapshot carries the same currency
// and unit as the first one. The core never converts currencies or
// rescales units; mixed populations are a caller error.
func CheckUniformUnits(snapshots []*Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	currency, unit := snapshots[0].Currency, snapshots[0].Unit
	for _, s := range snapshots[1:] {
		if s.Currency != currency || s.Unit != unit {
			return &InconsistentUnitsError{
				EntityID:     s.EntityID,
				Period:       s.Period.String(),
				WantCurrency: currency,
				GotCurrency:  s.Currency,
				WantUnit:     unit,
				GotUnit:      s.Unit,
			}
		}
	}
	return nil
}
