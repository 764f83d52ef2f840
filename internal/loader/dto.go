// Package loader supplies snapshots to the analytics core from JSON
// report files or Postgres, behind the contracts.SnapshotSource
// boundary.
package loader

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/finlens/backend/internal/contracts"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SnapshotDTO is the on-disk report shape. It is validated before
// conversion so malformed files fail loudly at the boundary instead of
// surfacing as undefined metrics deep in the analytics.
type SnapshotDTO struct {
	EntityID    string `json:"entity_id" validate:"required"`
	CompanyName string `json:"company_name"`
	Period      string `json:"period" validate:"required"`
	Currency    string `json:"currency" validate:"required,uppercase,len=3"`
	Unit        string `json:"unit" validate:"required,oneof=thousand million billion"`

	Raw contracts.RawLineItems `json:"raw"`
}

// ToSnapshot validates the DTO and converts it. Absent raw fields stay
// undefined; the loader never zero-fills.
func (d *SnapshotDTO) ToSnapshot() (*contracts.Snapshot, error) {
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("invalid snapshot for %q: %w", d.EntityID, err)
	}

	period, err := contracts.ParsePeriod(d.Period)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot for %q: %w", d.EntityID, err)
	}

	return &contracts.Snapshot{
		EntityID:    d.EntityID,
		CompanyName: d.CompanyName,
		Period:      period,
		Currency:    d.Currency,
		Unit:        d.Unit,
		Raw:         d.Raw,
	}, nil
}
