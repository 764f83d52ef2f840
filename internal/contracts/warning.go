package contracts

// Severity orders warning flags: none < info < warning < critical.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityCritical
)

// String renders the severity for logs and JSON.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// MarshalText makes Severity encode as its name in JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name; unknown names map to none.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "critical":
		*s = SeverityCritical
	default:
		*s = SeverityNone
	}
	return nil
}

// WarningFlag is one triggered rule from the early-warning catalog.
type WarningFlag struct {
	RuleID      string             `json:"rule_id"`
	Severity    Severity           `json:"severity"`
	Metrics     map[string]float64 `json:"metrics"`   // triggering observations
	Threshold   float64            `json:"threshold"` // the breached cut point
	Description string             `json:"description"`
}

// SkippedRule records a rule that could not be evaluated because a
// required input was undefined. Being skipped is distinct from being
// evaluated and not triggering.
type SkippedRule struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// EarlyWarningReport is the aggregate early-warning output: the full flag
// list (nothing is dropped for the summary), the overall severity (max of
// flag severities, none when empty), and per-rule bookkeeping.
type EarlyWarningReport struct {
	EntityID  string        `json:"entity_id"`
	Period    Period        `json:"period"`
	Flags     []WarningFlag `json:"flags"`
	Overall   Severity      `json:"overall"`
	Evaluated []string      `json:"evaluated"`
	Skipped   []SkippedRule `json:"skipped,omitempty"`
}
