package contracts

// TrendDirection classifies the movement of a metric over a series span,
// oriented by the metric's higher-is-better convention.
type TrendDirection string

const (
	TrendImproving     TrendDirection = "improving"
	TrendDeteriorating TrendDirection = "deteriorating"
	TrendFlat          TrendDirection = "flat"
)

// TrendPoint is one period's observation inside a TrendResult.
type TrendPoint struct {
	Period    Period `json:"period"`
	Value     Metric `json:"value"`
	Delta     Metric `json:"delta"`      // change vs previous available point
	GrowthPct Metric `json:"growth_pct"` // relative change vs previous, %
}

// TrendResult is the output of the trend analyzer for one entity/metric.
type TrendResult struct {
	EntityID  string         `json:"entity_id"`
	Metric    string         `json:"metric"`
	Points    []TrendPoint   `json:"points"`
	CAGRPct   Metric         `json:"cagr_pct"` // annualized, first→last defined
	Direction TrendDirection `json:"direction"`
	Gaps      []Period       `json:"gaps,omitempty"` // missing interior periods
}

// PeerZScores is the per-entity z-score mapping for one metric across a
// peer set. Entities whose value for the metric is undefined are excluded
// from the statistics and listed instead of being treated as zero.
type PeerZScores struct {
	Metric     string            `json:"metric"`
	Period     Period            `json:"period"`
	Mean       float64           `json:"mean"`
	StdDev     float64           `json:"std_dev"`
	Population int               `json:"population"`
	Scores     map[string]Metric `json:"scores"` // entity id → z
	Excluded   []string          `json:"excluded,omitempty"`
}

// PeerComparison ranks entities on one metric (rank 1 = best, after the
// metric's higher-is-better orientation).
type PeerComparison struct {
	Metric   string            `json:"metric"`
	Values   map[string]Metric `json:"values"`
	Ranking  map[string]int    `json:"ranking"`
	Best     string            `json:"best"`
	Worst    string            `json:"worst"`
	Excluded []string          `json:"excluded,omitempty"`
}

// ComponentScore is a named sub-score bounded to [0, 100] with an
// explanation tag. An undefined Score means insufficient data, which is
// deliberately distinct from a low score.
type ComponentScore struct {
	Name        string `json:"name"`
	Score       Metric `json:"score"`
	Explanation string `json:"explanation,omitempty"`
}

// CompositeScore is a fixed-weight aggregate of exactly four component
// scores. Total is undefined whenever any component is undefined.
type CompositeScore struct {
	Name       string             `json:"name"`
	Components []ComponentScore   `json:"components"`
	Weights    map[string]float64 `json:"weights"`
	Total      Metric             `json:"total"`
	Missing    []string           `json:"missing,omitempty"` // undefined components
	RedFlags   []string           `json:"red_flags,omitempty"`
}

// ValueCreationVerdict is the categorical reading of the ROIC−WACC spread.
type ValueCreationVerdict string

const (
	ValueCreating   ValueCreationVerdict = "value_creating"
	ValueDestroying ValueCreationVerdict = "value_destroying"
	ValueNeutral    ValueCreationVerdict = "neutral"
)

// ValueCreationResult carries the ROIC vs WACC analysis. Percentages
// throughout; Spread = ROIC − WACC in percentage points.
type ValueCreationResult struct {
	EntityID        string               `json:"entity_id"`
	Period          Period               `json:"period"`
	NOPAT           Metric               `json:"nopat"`
	InvestedCapital Metric               `json:"invested_capital"`
	ROICPct         Metric               `json:"roic_pct"`
	WACCPct         Metric               `json:"wacc_pct"`
	SpreadPct       Metric               `json:"spread_pct"`
	Verdict         ValueCreationVerdict `json:"verdict"`
	Assumptions     map[string]float64   `json:"assumptions,omitempty"`
}

// CapitalAllocation summarizes how a period's capital was deployed.
type CapitalAllocation struct {
	EntityID   string             `json:"entity_id"`
	Period     Period             `json:"period"`
	Dividends  float64            `json:"dividends"`
	Buybacks   float64            `json:"buybacks"`
	Capex      float64            `json:"capex"`
	RDExpense  float64            `json:"rd_expense"`
	MASpending float64            `json:"ma_spending"`
	DebtChange float64            `json:"debt_change"`
	Mix        map[string]float64 `json:"mix,omitempty"` // share of total, %

	ShareholderReturns float64 `json:"shareholder_returns"` // dividends + buybacks
	TotalInvestment    float64 `json:"total_investment"`    // capex + R&D + M&A
}

// FactorExposureVector maps factor names to standardized exposures.
// Z-scores are stored unclipped; Clipped is for display only.
type FactorExposureVector struct {
	EntityID  string             `json:"entity_id"`
	Period    Period             `json:"period"`
	Exposures map[string]Metric  `json:"exposures"`
	Details   map[string]float64 `json:"details,omitempty"`
}

// Clipped returns a copy with every defined exposure clamped to ±limit.
// The stored vector is never clipped.
func (v *FactorExposureVector) Clipped(limit float64) map[string]Metric {
	out := make(map[string]Metric, len(v.Exposures))
	for name, z := range v.Exposures {
		if z.Valid {
			c := z.Float64
			if c > limit {
				c = limit
			} else if c < -limit {
				c = -limit
			}
			out[name] = Num(c)
			continue
		}
		out[name] = z
	}
	return out
}
