package valuation

import (
	"context"

	"github.com/finlens/backend/internal/contracts"
)

// AllocationInputs are the capital deployment line items for one period,
// supplied by the caller. Amounts share the snapshot's reporting unit;
// DebtChange is signed (positive = net issuance).
type AllocationInputs struct {
	Dividends  float64 `json:"dividends"`
	Buybacks   float64 `json:"buybacks"`
	Capex      float64 `json:"capex"`
	RDExpense  float64 `json:"rd_expense"`
	MASpending float64 `json:"ma_spending"`
	DebtChange float64 `json:"debt_change"`
}

// AnalyzeAllocation breaks down how the period's capital was deployed:
// shareholder returns (dividends + buybacks), total investment
// (capex + R&D + M&A), and each category's share of the total. A period
// with nothing deployed gets an empty mix rather than divide-by-zero
// percentages.
func (a *Analyzer) AnalyzeAllocation(ctx context.Context, s *contracts.Snapshot, in AllocationInputs) (*contracts.CapitalAllocation, error) {
	if s == nil {
		return nil, &contracts.MissingInputError{Field: "snapshot"}
	}

	alloc := &contracts.CapitalAllocation{
		EntityID:   s.EntityID,
		Period:     s.Period,
		Dividends:  in.Dividends,
		Buybacks:   in.Buybacks,
		Capex:      in.Capex,
		RDExpense:  in.RDExpense,
		MASpending: in.MASpending,
		DebtChange: in.DebtChange,

		ShareholderReturns: in.Dividends + in.Buybacks,
		TotalInvestment:    in.Capex + in.RDExpense + in.MASpending,
	}

	categories := map[string]float64{
		"dividends":   in.Dividends,
		"buybacks":    in.Buybacks,
		"capex":       in.Capex,
		"rd_expense":  in.RDExpense,
		"ma_spending": in.MASpending,
	}
	total := 0.0
	for _, v := range categories {
		if v > 0 {
			total += v
		}
	}
	if total > 0 {
		alloc.Mix = make(map[string]float64, len(categories))
		for name, v := range categories {
			if v > 0 {
				alloc.Mix[name] = v / total * 100
			}
		}
	}

	a.log.WithFields(map[string]interface{}{
		"entity":              s.EntityID,
		"period":              s.Period.String(),
		"shareholder_returns": alloc.ShareholderReturns,
		"total_investment":    alloc.TotalInvestment,
	}).Debug("Capital allocation analyzed")

	return alloc, nil
}
