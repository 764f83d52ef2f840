package contracts

import "context"

// SnapshotSource is the loader collaborator boundary: anything that can
// supply raw snapshots to the analytics core. The core itself never opens
// files or sockets.
type SnapshotSource interface {
	// Load returns the snapshot for one entity and period, or nil when
	// not found.
	Load(ctx context.Context, entityID string, period Period) (*Snapshot, error)

	// LoadSeries returns all available snapshots for an entity, ordered
	// by period ascending.
	LoadSeries(ctx context.Context, entityID string) ([]*Snapshot, error)

	// ListEntities returns all entity ids with at least one snapshot.
	ListEntities(ctx context.Context) ([]string, error)

	// ListPeriods returns the available periods for an entity, ascending.
	ListPeriods(ctx context.Context, entityID string) ([]Period, error)
}
