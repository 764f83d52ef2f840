// Package trend computes period-over-period deltas, growth rates, and
// directional classification over an ordered series of snapshots for one
// entity.
package trend

import (
	"context"
	"fmt"
	"math"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
	"github.com/finlens/backend/pkg/logger"
)

// Analyzer classifies metric trends. Pure and safe for concurrent use.
type Analyzer struct {
	cfg analysisconfig.Trend
	log *logger.Logger
}

// NewAnalyzer creates an analyzer with explicit configuration.
func NewAnalyzer(cfg analysisconfig.Trend, log *logger.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, log: log}
}

// Analyze computes the trend of one metric over a series.
//
// The series must hold at least two snapshots with strictly increasing
// periods and uniform currency/unit. CAGR uses the first and last periods
// with a defined value; interior missing periods are reported as gaps and
// never interpolated. Fewer than two defined values is an
// InsufficientTrendLengthError.
func (a *Analyzer) Analyze(ctx context.Context, series *contracts.TrendSeries, metric string) (*contracts.TrendResult, error) {
	def, err := derive.Lookup(metric)
	if err != nil {
		return nil, err
	}

	if len(series.Snapshots) < 2 {
		return nil, &contracts.InsufficientTrendLengthError{
			EntityID: series.EntityID,
			Metric:   metric,
			Defined:  len(series.Snapshots),
		}
	}

	if err := validateOrdering(series); err != nil {
		return nil, err
	}
	if err := contracts.CheckUniformUnits(series.Snapshots); err != nil {
		return nil, err
	}

	points := make([]contracts.TrendPoint, 0, len(series.Snapshots))
	prev := contracts.Undefined()
	defined := 0
	for _, s := range series.Snapshots {
		value := def.Extract(s)
		if value.Valid {
			defined++
		}
		points = append(points, contracts.TrendPoint{
			Period:    s.Period,
			Value:     value,
			Delta:     value.Sub(prev),
			GrowthPct: value.GrowthPct(prev),
		})
		if value.Valid {
			prev = value
		}
	}

	if defined < 2 {
		return nil, &contracts.InsufficientTrendLengthError{
			EntityID: series.EntityID,
			Metric:   metric,
			Defined:  defined,
		}
	}

	result := &contracts.TrendResult{
		EntityID: series.EntityID,
		Metric:   metric,
		Points:   points,
		Gaps:     findGaps(series),
	}

	first, last := firstLastDefined(points)
	result.CAGRPct = cagrPct(first, last)
	result.Direction = a.classify(def, first, last)

	a.log.WithFields(map[string]interface{}{
		"entity":    series.EntityID,
		"metric":    metric,
		"points":    len(points),
		"gaps":      len(result.Gaps),
		"direction": result.Direction,
	}).Debug("Trend analyzed")

	return result, nil
}

// validateOrdering enforces strictly increasing periods.
func validateOrdering(series *contracts.TrendSeries) error {
	for i := 1; i < len(series.Snapshots); i++ {
		prev, cur := series.Snapshots[i-1], series.Snapshots[i]
		if !prev.Period.Before(cur.Period) {
			return fmt.Errorf("trend series for %s: periods not strictly increasing at %s",
				series.EntityID, cur.Period)
		}
	}
	return nil
}

// findGaps lists interior periods missing from the series.
func findGaps(series *contracts.TrendSeries) []contracts.Period {
	var gaps []contracts.Period
	for i := 1; i < len(series.Snapshots); i++ {
		for p := series.Snapshots[i-1].Period.Next(); p.Before(series.Snapshots[i].Period); p = p.Next() {
			gaps = append(gaps, p)
		}
	}
	return gaps
}

func firstLastDefined(points []contracts.TrendPoint) (first, last contracts.TrendPoint) {
	for _, p := range points {
		if p.Value.Valid {
			first = p
			break
		}
	}
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value.Valid {
			last = points[i]
			break
		}
	}
	return first, last
}

// cagrPct annualizes growth between the first and last defined points.
// Undefined when the span is under a quarter or when either endpoint is
// non-positive (a geometric rate has no meaning across a sign change).
func cagrPct(first, last contracts.TrendPoint) contracts.Metric {
	quarters := first.Period.QuartersTo(last.Period)
	if quarters < 1 {
		return contracts.Undefined()
	}
	if !first.Value.Valid || !last.Value.Valid {
		return contracts.Undefined()
	}
	if first.Value.Float64 <= 0 || last.Value.Float64 <= 0 {
		return contracts.Undefined()
	}
	years := float64(quarters) / 4
	rate := math.Pow(last.Value.Float64/first.Value.Float64, 1/years) - 1
	return contracts.Num(rate * 100)
}

// classify calls a direction only when the relative change over the span
// clears the configured threshold; anything smaller is flat.
func (a *Analyzer) classify(def derive.MetricDef, first, last contracts.TrendPoint) contracts.TrendDirection {
	if !first.Value.Valid || !last.Value.Valid {
		return contracts.TrendFlat
	}

	var changePct float64
	if first.Value.Float64 != 0 {
		changePct = (last.Value.Float64 - first.Value.Float64) / math.Abs(first.Value.Float64) * 100
	} else if last.Value.Float64 != 0 {
		changePct = math.Inf(sign(last.Value.Float64))
	}

	if math.Abs(changePct) < a.cfg.MinChangePct {
		return contracts.TrendFlat
	}

	rising := changePct > 0
	if rising == def.HigherIsBetter {
		return contracts.TrendImproving
	}
	return contracts.TrendDeteriorating
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
