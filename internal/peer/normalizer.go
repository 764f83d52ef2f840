// Package peer computes cross-sectional statistics and z-scores for one
// metric across a set of entities sharing a period.
package peer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
	"github.com/finlens/backend/pkg/logger"
)

// Normalizer standardizes metric values across a peer population.
// Stateless and safe for concurrent use.
type Normalizer struct {
	cfg analysisconfig.Peer
	log *logger.Logger
}

// NewNormalizer creates a normalizer with explicit configuration.
func NewNormalizer(cfg analysisconfig.Peer, log *logger.Logger) *Normalizer {
	return &Normalizer{cfg: cfg, log: log}
}

// Normalize computes per-entity z-scores for one metric across a peer
// set. Entities with an undefined value are excluded from the statistics
// and reported in Excluded rather than counted as zero. When the defined
// population falls below the configured minimum, or all values are equal,
// the whole normalization fails with InsufficientPeerPopulationError.
//
// Extraction runs per entity in parallel (the scatter phase); statistics
// are gathered once every value is in. Input ordering cannot influence
// any z-score: accumulation happens over entities sorted by id.
func (n *Normalizer) Normalize(ctx context.Context, peers *contracts.PeerSet, metric string) (*contracts.PeerZScores, error) {
	def, err := derive.Lookup(metric)
	if err != nil {
		return nil, err
	}

	if err := validatePeerSet(peers); err != nil {
		return nil, err
	}

	// Scatter: extract (and derive if needed) per entity.
	values := make(map[string]contracts.Metric, len(peers.Snapshots))
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for _, s := range peers.Snapshots {
		s := s
		g.Go(func() error {
			v := def.Extract(s)
			mu.Lock()
			values[s.EntityID] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := n.NormalizeValues(metric, values)
	if err != nil {
		return nil, err
	}
	result.Period = peers.Period

	n.log.WithFields(map[string]interface{}{
		"metric":     metric,
		"period":     peers.Period.String(),
		"population": result.Population,
		"excluded":   len(result.Excluded),
	}).Debug("Peer normalization completed")

	return result, nil
}

// NormalizeValues is the gather/scatter core over an arbitrary named
// value map. The factor engine feeds raw factor measures through here.
func (n *Normalizer) NormalizeValues(metric string, values map[string]contracts.Metric) (*contracts.PeerZScores, error) {
	included := make([]string, 0, len(values))
	var excluded []string
	for id, v := range values {
		if v.Valid {
			included = append(included, id)
		} else {
			excluded = append(excluded, id)
		}
	}
	// Deterministic accumulation order regardless of input ordering.
	sort.Strings(included)
	sort.Strings(excluded)

	if len(included) < n.cfg.MinPopulation {
		return nil, &contracts.InsufficientPeerPopulationError{
			Metric:     metric,
			Population: len(included),
			Minimum:    n.cfg.MinPopulation,
		}
	}

	// Gather: population statistics over the defined subpopulation.
	mean := 0.0
	for _, id := range included {
		mean += values[id].Float64
	}
	mean /= float64(len(included))

	variance := 0.0
	for _, id := range included {
		d := values[id].Float64 - mean
		variance += d * d
	}
	variance /= float64(len(included) - 1) // sample variance
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return nil, &contracts.InsufficientPeerPopulationError{
			Metric:     metric,
			Population: len(included),
			ZeroStdDev: true,
		}
	}

	// Scatter: z per entity.
	scores := make(map[string]contracts.Metric, len(included))
	for _, id := range included {
		scores[id] = contracts.Num((values[id].Float64 - mean) / stdDev)
	}

	return &contracts.PeerZScores{
		Metric:     metric,
		Mean:       mean,
		StdDev:     stdDev,
		Population: len(included),
		Scores:     scores,
		Excluded:   excluded,
	}, nil
}

// Compare ranks the peer set on one metric (rank 1 = best under the
// metric's higher-is-better orientation). Entities with undefined values
// are excluded from the ranking.
func (n *Normalizer) Compare(ctx context.Context, peers *contracts.PeerSet, metric string) (*contracts.PeerComparison, error) {
	def, err := derive.Lookup(metric)
	if err != nil {
		return nil, err
	}
	if err := validatePeerSet(peers); err != nil {
		return nil, err
	}

	values := make(map[string]contracts.Metric, len(peers.Snapshots))
	var excluded, included []string
	for _, s := range peers.Snapshots {
		v := def.Extract(s)
		values[s.EntityID] = v
		if v.Valid {
			included = append(included, s.EntityID)
		} else {
			excluded = append(excluded, s.EntityID)
		}
	}
	if len(included) == 0 {
		return nil, &contracts.InsufficientPeerPopulationError{
			Metric:  metric,
			Minimum: 1,
		}
	}

	sort.Slice(included, func(i, j int) bool {
		vi, vj := values[included[i]].Float64, values[included[j]].Float64
		if vi == vj {
			return included[i] < included[j] // stable tie-break
		}
		if def.HigherIsBetter {
			return vi > vj
		}
		return vi < vj
	})

	ranking := make(map[string]int, len(included))
	for i, id := range included {
		ranking[id] = i + 1
	}
	sort.Strings(excluded)

	return &contracts.PeerComparison{
		Metric:   metric,
		Values:   values,
		Ranking:  ranking,
		Best:     included[0],
		Worst:    included[len(included)-1],
		Excluded: excluded,
	}, nil
}

// validatePeerSet enforces distinct entities, a shared period, and
// uniform units.
func validatePeerSet(peers *contracts.PeerSet) error {
	seen := make(map[string]bool, len(peers.Snapshots))
	for _, s := range peers.Snapshots {
		if seen[s.EntityID] {
			return fmt.Errorf("peer set contains entity %s twice", s.EntityID)
		}
		seen[s.EntityID] = true
		if s.Period != peers.Period {
			return fmt.Errorf("peer set period %s but entity %s has %s",
				peers.Period, s.EntityID, s.Period)
		}
	}
	return contracts.CheckUniformUnits(peers.Snapshots)
}
