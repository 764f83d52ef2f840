package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
	"github.com/finlens/backend/pkg/logger"
)

// FileStore reads snapshots from a directory of JSON report files named
// <entity>_<period>.json (e.g. ACME_2023Q4.json). Loaded snapshots come
// back with derived metrics already filled in.
type FileStore struct {
	dir string
	log *logger.Logger
}

// NewFileStore creates a store over an existing directory.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot directory: %s is not a directory", dir)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Load reads one entity/period file; nil when the file does not exist.
func (f *FileStore) Load(ctx context.Context, entityID string, period contracts.Period) (*contracts.Snapshot, error) {
	path := filepath.Join(f.dir, fmt.Sprintf("%s_%s.json", entityID, period))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return f.decode(path, data)
}

// LoadSeries reads every period file for an entity, ascending.
func (f *FileStore) LoadSeries(ctx context.Context, entityID string) ([]*contracts.Snapshot, error) {
	periods, err := f.ListPeriods(ctx, entityID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*contracts.Snapshot, 0, len(periods))
	for _, p := range periods {
		s, err := f.Load(ctx, entityID, p)
		if err != nil {
			return nil, err
		}
		if s != nil {
			snapshots = append(snapshots, s)
		}
	}
	return snapshots, nil
}

// ListEntities scans the directory for distinct entity ids.
func (f *FileStore) ListEntities(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("scan snapshot directory: %w", err)
	}

	seen := make(map[string]bool)
	var entities []string
	for _, entry := range entries {
		id, _, ok := parseFilename(entry.Name())
		if ok && !seen[id] {
			seen[id] = true
			entities = append(entities, id)
		}
	}
	sort.Strings(entities)
	return entities, nil
}

// ListPeriods returns the available periods for an entity, ascending.
func (f *FileStore) ListPeriods(ctx context.Context, entityID string) ([]contracts.Period, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("scan snapshot directory: %w", err)
	}

	var periods []contracts.Period
	for _, entry := range entries {
		id, p, ok := parseFilename(entry.Name())
		if ok && id == entityID {
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods, nil
}

// Save writes one snapshot back as a report file. Used by ingestion and
// the test fixtures.
func (f *FileStore) Save(ctx context.Context, s *contracts.Snapshot) error {
	dto := SnapshotDTO{
		EntityID:    s.EntityID,
		CompanyName: s.CompanyName,
		Period:      s.Period.String(),
		Currency:    s.Currency,
		Unit:        s.Unit,
		Raw:         s.Raw,
	}
	data, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s/%s: %w", s.EntityID, s.Period, err)
	}

	path := filepath.Join(f.dir, fmt.Sprintf("%s_%s.json", s.EntityID, s.Period))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

func (f *FileStore) decode(path string, data []byte) (*contracts.Snapshot, error) {
	var dto SnapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	s, err := dto.ToSnapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return derive.Enrich(s), nil
}

// parseFilename splits <entity>_<period>.json; the entity id may itself
// contain underscores, so the period is taken from the last segment.
func parseFilename(name string) (string, contracts.Period, bool) {
	if !strings.HasSuffix(name, ".json") {
		return "", contracts.Period{}, false
	}
	base := strings.TrimSuffix(name, ".json")
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", contracts.Period{}, false
	}
	period, err := contracts.ParsePeriod(base[i+1:])
	if err != nil {
		return "", contracts.Period{}, false
	}
	return base[:i], period, true
}
