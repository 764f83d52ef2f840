// Package factor computes standardized style-factor exposures (quality,
// value, momentum, size, volatility) for every entity in a peer set.
package factor

import (
	"context"
	"errors"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
	"github.com/finlens/backend/internal/peer"
	"github.com/finlens/backend/pkg/logger"
)

// FactorNames lists the supported factors in canonical order.
var FactorNames = []string{"quality", "value", "momentum", "size", "volatility"}

// Engine computes raw factor measures per entity and standardizes each
// factor cross-sectionally through the peer normalizer.
type Engine struct {
	cfg        analysisconfig.Factor
	normalizer *peer.Normalizer
	log        *logger.Logger
}

// NewEngine creates a factor engine sharing the peer normalizer's
// population rules.
func NewEngine(cfg analysisconfig.Factor, normalizer *peer.Normalizer, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, normalizer: normalizer, log: log}
}

// Compute builds one exposure vector per entity in the peer set.
// Momentum and volatility need per-entity history; histories maps entity
// id to its ascending snapshot series and may omit entities. A factor
// whose defined population is too small, or whose values carry no
// dispersion, is left undefined across the board; a partial vector is a
// valid result, not an error.
func (e *Engine) Compute(ctx context.Context, peers *contracts.PeerSet, histories map[string][]*contracts.Snapshot) (map[string]*contracts.FactorExposureVector, error) {
	if peers == nil || len(peers.Snapshots) == 0 {
		return nil, &contracts.MissingInputError{Field: "peer_set"}
	}

	// Raw measures per factor, computed per entity in parallel.
	raw := make(map[string]map[string]contracts.Metric, len(FactorNames))
	for _, name := range FactorNames {
		raw[name] = make(map[string]contracts.Metric, len(peers.Snapshots))
	}

	type entityMeasures struct {
		id       string
		measures map[string]contracts.Metric
	}
	results := make([]entityMeasures, len(peers.Snapshots))

	g, _ := errgroup.WithContext(ctx)
	for i, s := range peers.Snapshots {
		i, s := i, s
		g.Go(func() error {
			results[i] = entityMeasures{
				id:       s.EntityID,
				measures: e.rawMeasures(s, histories[s.EntityID]),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, r := range results {
		for name, v := range r.measures {
			raw[name][r.id] = v
		}
	}

	// Standardize each factor across the peer set. Population failures
	// degrade that factor to undefined instead of failing the vector.
	exposures := make(map[string]*contracts.PeerZScores, len(FactorNames))
	for _, name := range FactorNames {
		z, err := e.normalizer.NormalizeValues(name, raw[name])
		if err != nil {
			var popErr *contracts.InsufficientPeerPopulationError
			if errors.As(err, &popErr) {
				e.log.WithFields(map[string]interface{}{
					"factor":     name,
					"population": popErr.Population,
				}).Debug("Factor left undefined")
				continue
			}
			return nil, err
		}
		exposures[name] = z
	}

	vectors := make(map[string]*contracts.FactorExposureVector, len(peers.Snapshots))
	for _, s := range peers.Snapshots {
		v := &contracts.FactorExposureVector{
			EntityID:  s.EntityID,
			Period:    peers.Period,
			Exposures: make(map[string]contracts.Metric, len(FactorNames)),
			Details:   make(map[string]float64),
		}
		for _, name := range FactorNames {
			z := contracts.Undefined()
			if zs, ok := exposures[name]; ok {
				if score, ok := zs.Scores[s.EntityID]; ok {
					z = score
				}
			}
			v.Exposures[name] = z
			if m := raw[name][s.EntityID]; m.Valid {
				v.Details[name+"_raw"] = m.Float64
			}
		}
		vectors[s.EntityID] = v
	}

	e.log.WithFields(map[string]interface{}{
		"period":   peers.Period.String(),
		"entities": len(vectors),
		"factors":  definedFactors(exposures),
	}).Debug("Factor exposures computed")

	return vectors, nil
}

// rawMeasures computes the pre-standardization factor values for one
// entity. Anything unmeasurable stays undefined.
func (e *Engine) rawMeasures(s *contracts.Snapshot, history []*contracts.Snapshot) map[string]contracts.Metric {
	d := derivedOf(s)
	return map[string]contracts.Metric{
		"quality":    quality(d),
		"value":      value(s),
		"momentum":   e.momentum(s, history),
		"size":       size(s),
		"volatility": e.volatility(history),
	}
}

// quality blends profitability against leverage:
// ROE + operating margin − debt ratio / 2.
func quality(d contracts.DerivedMetrics) contracts.Metric {
	if !d.ROE.Valid || !d.OperatingMargin.Valid || !d.DebtRatio.Valid {
		return contracts.Undefined()
	}
	return contracts.Num(d.ROE.Float64 + d.OperatingMargin.Float64 - d.DebtRatio.Float64/2)
}

// value uses reported EPS; loss-makers carry no value signal here.
func value(s *contracts.Snapshot) contracts.Metric {
	if !s.Raw.EPS.Valid || s.Raw.EPS.Float64 <= 0 {
		return contracts.Undefined()
	}
	return s.Raw.EPS
}

// momentum is trailing net income growth over the configured lookback.
func (e *Engine) momentum(current *contracts.Snapshot, history []*contracts.Snapshot) contracts.Metric {
	if len(history) == 0 {
		return contracts.Undefined()
	}
	target := current.Period
	for i := 0; i < e.cfg.MomentumLookback; i++ {
		target = previousPeriod(target)
	}
	for _, s := range history {
		if s.Period == target {
			return current.Raw.NetIncome.GrowthPct(s.Raw.NetIncome)
		}
	}
	return contracts.Undefined()
}

// size is the natural log of total assets, undefined for non-positive
// balance sheets.
func size(s *contracts.Snapshot) contracts.Metric {
	if !s.Raw.TotalAssets.Valid || s.Raw.TotalAssets.Float64 <= 0 {
		return contracts.Undefined()
	}
	return contracts.Num(math.Log(s.Raw.TotalAssets.Float64))
}

// volatility is the coefficient of variation of net income over the
// configured minimum window. Low history means no signal, not zero risk.
func (e *Engine) volatility(history []*contracts.Snapshot) contracts.Metric {
	var earnings []float64
	for _, s := range history {
		if s.Raw.NetIncome.Valid {
			earnings = append(earnings, s.Raw.NetIncome.Float64)
		}
	}
	if len(earnings) < e.cfg.VolatilityPeriods {
		return contracts.Undefined()
	}

	mean := 0.0
	for _, v := range earnings {
		mean += v
	}
	mean /= float64(len(earnings))
	if mean == 0 {
		return contracts.Undefined()
	}

	variance := 0.0
	for _, v := range earnings {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(earnings) - 1)

	return contracts.Num(math.Sqrt(variance) / math.Abs(mean))
}

func derivedOf(s *contracts.Snapshot) contracts.DerivedMetrics {
	if s.Derived != nil {
		return *s.Derived
	}
	return derive.Metrics(s.Raw)
}

func previousPeriod(p contracts.Period) contracts.Period {
	if p.Season == 1 {
		return contracts.Period{Year: p.Year - 1, Season: 4}
	}
	return contracts.Period{Year: p.Year, Season: p.Season - 1}
}

func definedFactors(exposures map[string]*contracts.PeerZScores) []string {
	names := make([]string, 0, len(exposures))
	for name := range exposures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
