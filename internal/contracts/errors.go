package contracts

import (
	"fmt"
	"strings"
)

// The error taxonomy below is the whole failure surface of the analytics
// core. Every error names the offending input so callers can act on it;
// nothing is retried internally.

// MissingInputError reports a required input absent where the operation
// cannot proceed.
type MissingInputError struct {
	Field    string
	EntityID string
	Period   string
}

func (e *MissingInputError) Error() string {
	msg := fmt.Sprintf("missing required input %q", e.Field)
	if e.EntityID != "" {
		msg += " for entity " + e.EntityID
	}
	if e.Period != "" {
		msg += " period " + e.Period
	}
	return msg
}

// InsufficientPeerPopulationError reports a peer set smaller than the
// configured minimum after excluding entities with undefined values, or a
// degenerate population (zero dispersion).
type InsufficientPeerPopulationError struct {
	Metric     string
	Population int
	Minimum    int
	ZeroStdDev bool
}

func (e *InsufficientPeerPopulationError) Error() string {
	if e.ZeroStdDev {
		return fmt.Sprintf("peer normalization for %q: zero dispersion across %d entities", e.Metric, e.Population)
	}
	return fmt.Sprintf("peer normalization for %q: population %d below minimum %d", e.Metric, e.Population, e.Minimum)
}

// InsufficientTrendLengthError reports fewer than two defined data points
// for the requested metric over the series span.
type InsufficientTrendLengthError struct {
	EntityID string
	Metric   string
	Defined  int
}

func (e *InsufficientTrendLengthError) Error() string {
	return fmt.Sprintf("trend for %s/%s: %d defined point(s), need at least 2", e.EntityID, e.Metric, e.Defined)
}

// InconsistentUnitsError reports mismatched currency or unit across
// snapshots being compared. The core never converts; comparison is
// rejected before any computation.
type InconsistentUnitsError struct {
	EntityID     string
	Period       string
	WantCurrency string
	GotCurrency  string
	WantUnit     string
	GotUnit      string
}

func (e *InconsistentUnitsError) Error() string {
	return fmt.Sprintf("inconsistent units at %s/%s: %s/%s vs %s/%s",
		e.EntityID, e.Period, e.GotCurrency, e.GotUnit, e.WantCurrency, e.WantUnit)
}

// InvalidWeightsError reports composite weights that do not sum to 1.0
// within tolerance, or that do not match the supplied component names.
type InvalidWeightsError struct {
	Sum     float64
	Missing []string
	Extra   []string
}

func (e *InvalidWeightsError) Error() string {
	if len(e.Missing) > 0 || len(e.Extra) > 0 {
		return fmt.Sprintf("composite weights do not match components (missing: %s, extra: %s)",
			strings.Join(e.Missing, ","), strings.Join(e.Extra, ","))
	}
	return fmt.Sprintf("composite weights sum to %.6f, want 1.0", e.Sum)
}
