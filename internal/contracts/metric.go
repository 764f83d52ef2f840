package contracts

import (
	"bytes"
	"encoding/json"
	"math"
)

// Metric is a first-class "value or no value" for a financial quantity.
// A ratio with a zero or missing denominator is undefined, never zero;
// the distinction survives JSON round-trips as null.
type Metric struct {
	Float64 float64
	Valid   bool
}

// Num returns a defined Metric.
func Num(v float64) Metric {
	return Metric{Float64: v, Valid: true}
}

// Undefined returns an undefined Metric.
func Undefined() Metric {
	return Metric{}
}

// Ratio divides num by den, returning an undefined Metric when the
// denominator is undefined or zero, or the numerator is undefined.
func Ratio(num, den Metric) Metric {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return Undefined()
	}
	return Num(num.Float64 / den.Float64)
}

// Scale multiplies a defined Metric by f; undefined stays undefined.
func (m Metric) Scale(f float64) Metric {
	if !m.Valid {
		return m
	}
	return Num(m.Float64 * f)
}

// Sub returns m - o, undefined if either side is undefined.
func (m Metric) Sub(o Metric) Metric {
	if !m.Valid || !o.Valid {
		return Undefined()
	}
	return Num(m.Float64 - o.Float64)
}

// GrowthPct returns the relative change from prev to m, in percent.
// Undefined when either value is undefined or prev is zero.
func (m Metric) GrowthPct(prev Metric) Metric {
	if !m.Valid || !prev.Valid || prev.Float64 == 0 {
		return Undefined()
	}
	return Num((m.Float64 - prev.Float64) / math.Abs(prev.Float64) * 100)
}

var nullBytes = []byte("null")

// MarshalJSON encodes undefined metrics as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return nullBytes, nil
	}
	return json.Marshal(m.Float64)
}

// UnmarshalJSON decodes null (or absent via zero value) as undefined.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullBytes) {
		*m = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Num(v)
	return nil
}
