// Package analysisconfig holds every tunable of the analytics engine:
// thresholds, weights, and minimum population sizes. Configuration is
// loaded once and passed explicitly into each component constructor, so
// concurrent requests can run against different configurations.
package analysisconfig

// Config is the full analysis configuration.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Trend     Trend     `yaml:"trend" json:"trend"`
	Peer      Peer      `yaml:"peer" json:"peer"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Valuation Valuation `yaml:"valuation" json:"valuation"`
	Factor    Factor    `yaml:"factor" json:"factor"`
	Warning   Warning   `yaml:"warning" json:"warning"`
}

// Meta identifies the configuration for reproducibility.
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Trend controls directional classification.
type Trend struct {
	// MinChangePct is the minimum relative change (percent, absolute)
	// over the span before a direction is called; below it the trend is
	// flat rather than noise dressed up as a signal.
	MinChangePct float64 `yaml:"min_change_pct" json:"min_change_pct"`
}

// Peer controls cross-sectional normalization.
type Peer struct {
	// MinPopulation is the smallest defined population for which a
	// z-score is considered meaningful.
	MinPopulation int `yaml:"min_population" json:"min_population"`
}

// Scoring holds the two composite-score instantiations.
type Scoring struct {
	Management Management `yaml:"management" json:"management"`
	Earnings   Earnings   `yaml:"earnings" json:"earnings"`
}

// Management quality component weights and thresholds.
type Management struct {
	Weights            map[string]float64 `yaml:"weights" json:"weights"`
	TenureGoodYears    float64            `yaml:"tenure_good_years" json:"tenure_good_years"`
	TenureTopYears     float64            `yaml:"tenure_top_years" json:"tenure_top_years"`
	IndependenceTarget float64            `yaml:"independence_target" json:"independence_target"`
}

// Earnings quality component weights and thresholds.
type Earnings struct {
	Weights             map[string]float64 `yaml:"weights" json:"weights"`
	AccrualThreshold    float64            `yaml:"accrual_threshold" json:"accrual_threshold"`
	WCSpikeThreshold    float64            `yaml:"wc_spike_threshold" json:"wc_spike_threshold"`
	OneOffThreshold     float64            `yaml:"one_off_threshold" json:"one_off_threshold"`
	StabilityMinPeriods int                `yaml:"stability_min_periods" json:"stability_min_periods"`
}

// Valuation controls the ROIC/WACC verdict bands and CAPM defaults.
type Valuation struct {
	// Spread cut points in percentage points. Explicit, never derived
	// from the data.
	CreatingMinSpreadPct   float64 `yaml:"creating_min_spread_pct" json:"creating_min_spread_pct"`
	DestroyingMaxSpreadPct float64 `yaml:"destroying_max_spread_pct" json:"destroying_max_spread_pct"`

	RiskFreeRate      float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	MarketRiskPremium float64 `yaml:"market_risk_premium" json:"market_risk_premium"`
	DefaultTaxRate    float64 `yaml:"default_tax_rate" json:"default_tax_rate"`
}

// Factor controls factor exposure computation.
type Factor struct {
	// DisplayClip bounds exposures for presentation only; stored vectors
	// are never clipped.
	DisplayClip       float64 `yaml:"display_clip" json:"display_clip"`
	MomentumLookback  int     `yaml:"momentum_lookback" json:"momentum_lookback"`
	VolatilityPeriods int     `yaml:"volatility_periods" json:"volatility_periods"`
}

// Warning holds the early-warning rule thresholds.
type Warning struct {
	CurrentRatioFloor      float64 `yaml:"current_ratio_floor" json:"current_ratio_floor"`
	LeverageSpikePts       float64 `yaml:"leverage_spike_pts" json:"leverage_spike_pts"`
	DebtRatioHighPct       float64 `yaml:"debt_ratio_high_pct" json:"debt_ratio_high_pct"`
	DebtRatioCriticalPct   float64 `yaml:"debt_ratio_critical_pct" json:"debt_ratio_critical_pct"`
	ReceivableSpikePct     float64 `yaml:"receivable_spike_pct" json:"receivable_spike_pct"`
	InventorySpikePct      float64 `yaml:"inventory_spike_pct" json:"inventory_spike_pct"`
	MarginCompressionPts   float64 `yaml:"margin_compression_pts" json:"margin_compression_pts"`
	CashDepletionPct       float64 `yaml:"cash_depletion_pct" json:"cash_depletion_pct"`
	DivergenceGrowthMinPct float64 `yaml:"divergence_growth_min_pct" json:"divergence_growth_min_pct"`
}

// Default returns the built-in configuration profile. Values mirror the
// documented cut points; they are configuration, not calibration.
func Default() *Config {
	return &Config{
		Meta: Meta{ProfileID: "fundamental_default", Version: "1.0.0"},
		Trend: Trend{
			MinChangePct: 1.0,
		},
		Peer: Peer{
			MinPopulation: 3,
		},
		Scoring: Scoring{
			Management: Management{
				Weights: map[string]float64{
					"tenure_stability":   0.25,
					"board_independence": 0.25,
					"insider_alignment":  0.25,
					"governance":         0.25,
				},
				TenureGoodYears:    3,
				TenureTopYears:     5,
				IndependenceTarget: 0.5,
			},
			Earnings: Earnings{
				Weights: map[string]float64{
					"accrual_quality":    0.25,
					"working_capital":    0.25,
					"one_off_dependency": 0.25,
					"earnings_stability": 0.25,
				},
				AccrualThreshold:    0.10,
				WCSpikeThreshold:    0.15,
				OneOffThreshold:     0.20,
				StabilityMinPeriods: 4,
			},
		},
		Valuation: Valuation{
			CreatingMinSpreadPct:   1.0,
			DestroyingMaxSpreadPct: -1.0,
			RiskFreeRate:           0.02,
			MarketRiskPremium:      0.06,
			DefaultTaxRate:         0.20,
		},
		Factor: Factor{
			DisplayClip:       3.0,
			MomentumLookback:  1,
			VolatilityPeriods: 4,
		},
		Warning: Warning{
			CurrentRatioFloor:      1.0,
			LeverageSpikePts:       10.0,
			DebtRatioHighPct:       70.0,
			DebtRatioCriticalPct:   80.0,
			ReceivableSpikePct:     20.0,
			InventorySpikePct:      20.0,
			MarginCompressionPts:   5.0,
			CashDepletionPct:       30.0,
			DivergenceGrowthMinPct: 5.0,
		},
	}
}
