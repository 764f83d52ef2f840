package contracts

import "time"

// AnalysisReport bundles every analytics output for one entity/period.
// It is the record the batch builder hands to the API/CLI layer.
type AnalysisReport struct {
	EntityID    string    `json:"entity_id"`
	CompanyName string    `json:"company_name"`
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`

	Snapshot      *Snapshot             `json:"snapshot"`
	Trends        []*TrendResult        `json:"trends,omitempty"`
	Management    *CompositeScore       `json:"management,omitempty"`
	Earnings      *CompositeScore       `json:"earnings,omitempty"`
	ValueCreation *ValueCreationResult  `json:"value_creation,omitempty"`
	Factors       *FactorExposureVector `json:"factors,omitempty"`
	Warnings      *EarlyWarningReport   `json:"warnings,omitempty"`
}
