package contracts

import (
	"fmt"
	"strconv"
	"strings"
)

// Period identifies one reporting period as year + season (quarter).
// Periods sort naturally: 2023Q1 < 2023Q4 < 2024Q1.
type Period struct {
	Year   int `json:"year"`
	Season int `json:"season"` // 1..4
}

// ParsePeriod parses the "<year>Q<season>" convention, e.g. "2023Q3".
func ParsePeriod(s string) (Period, error) {
	parts := strings.SplitN(strings.ToUpper(strings.TrimSpace(s)), "Q", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period %q: want <year>Q<season>", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	season, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	if season < 1 || season > 4 {
		return Period{}, fmt.Errorf("invalid period %q: season out of range", s)
	}
	return Period{Year: year, Season: season}, nil
}

// String renders the canonical "<year>Q<season>" form.
func (p Period) String() string {
	return fmt.Sprintf("%dQ%d", p.Year, p.Season)
}

// Index maps the period onto a linear quarter axis for ordering and
// distance arithmetic.
func (p Period) Index() int {
	return p.Year*4 + (p.Season - 1)
}

// Before reports whether p precedes o.
func (p Period) Before(o Period) bool {
	return p.Index() < o.Index()
}

// Next returns the immediately following quarter.
func (p Period) Next() Period {
	if p.Season == 4 {
		return Period{Year: p.Year + 1, Season: 1}
	}
	return Period{Year: p.Year, Season: p.Season + 1}
}

// QuartersTo returns the number of quarters from p to o (positive when o
// is later).
func (p Period) QuartersTo(o Period) int {
	return o.Index() - p.Index()
}
