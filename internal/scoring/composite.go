// Package scoring implements the weighted composite scorer and its two
// instantiations: management quality and earnings quality. Components are
// bounded to [0, 100]; an undefined component makes the composite
// undefined so callers can tell "low score" from "insufficient data".
package scoring

import (
	"sort"

	"github.com/finlens/backend/internal/contracts"
)

const weightTolerance = 1e-6

// Compose aggregates exactly four named component scores under a weight
// map. Weights must cover the component names exactly and sum to 1.0
// within tolerance; otherwise InvalidWeightsError. If any component is
// undefined the total is undefined and the missing names are recorded;
// there is no fallback substitution.
func Compose(name string, components []contracts.ComponentScore, weights map[string]float64) (*contracts.CompositeScore, error) {
	if len(components) != 4 || len(weights) != 4 {
		return nil, mismatch(components, weights)
	}

	sum := 0.0
	for compName, w := range weights {
		if !hasComponent(components, compName) {
			return nil, mismatch(components, weights)
		}
		sum += w
	}
	if sum < 1-weightTolerance || sum > 1+weightTolerance {
		return nil, &contracts.InvalidWeightsError{Sum: sum}
	}

	composite := &contracts.CompositeScore{
		Name:       name,
		Components: components,
		Weights:    weights,
	}

	total := 0.0
	for _, c := range components {
		if !c.Score.Valid {
			composite.Missing = append(composite.Missing, c.Name)
			continue
		}
		total += weights[c.Name] * c.Score.Float64
	}
	if len(composite.Missing) > 0 {
		sort.Strings(composite.Missing)
		composite.Total = contracts.Undefined()
		return composite, nil
	}

	composite.Total = contracts.Num(clamp(total, 0, 100))
	return composite, nil
}

func hasComponent(components []contracts.ComponentScore, name string) bool {
	for _, c := range components {
		if c.Name == name {
			return true
		}
	}
	return false
}

func mismatch(components []contracts.ComponentScore, weights map[string]float64) *contracts.InvalidWeightsError {
	err := &contracts.InvalidWeightsError{}
	for _, c := range components {
		if _, ok := weights[c.Name]; !ok {
			err.Missing = append(err.Missing, c.Name)
		}
	}
	for name := range weights {
		if !hasComponent(components, name) {
			err.Extra = append(err.Extra, name)
		}
	}
	sort.Strings(err.Missing)
	sort.Strings(err.Extra)
	return err
}

// clamp bounds v to [lo, hi] after any linear transform; scores never
// wrap.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
