package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/pkg/logger"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return store
}

func storedSnap(id, period string) *contracts.Snapshot {
	p, _ := contracts.ParsePeriod(period)
	return &contracts.Snapshot{
		EntityID: id,
		Period:   p,
		Currency: "USD",
		Unit:     "million",
		Raw: contracts.RawLineItems{
			NetRevenue:  contracts.Num(800),
			GrossProfit: contracts.Num(320),
			NetIncome:   contracts.Num(120),
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSnap("ACME", "2023Q4")))

	loaded, err := store.Load(ctx, "ACME", contracts.Period{Year: 2023, Season: 4})
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "ACME", loaded.EntityID)
	assert.InDelta(t, 800, loaded.Raw.NetRevenue.Float64, 1e-9)
	assert.False(t, loaded.Raw.Inventory.Valid, "absent fields stay undefined")

	// loading enriches with derived metrics
	require.NotNil(t, loaded.Derived)
	assert.InDelta(t, 40, loaded.Derived.GrossMargin.Float64, 1e-9)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := newStore(t)

	loaded, err := store.Load(context.Background(), "NOPE", contracts.Period{Year: 2023, Season: 1})
	require.NoError(t, err)
	assert.Nil(t, loaded, "a missing file is an absence, not an error")
}

func TestFileStoreListing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSnap("BETA", "2023Q4")))
	require.NoError(t, store.Save(ctx, storedSnap("ACME", "2023Q4")))
	require.NoError(t, store.Save(ctx, storedSnap("ACME", "2023Q2")))
	require.NoError(t, store.Save(ctx, storedSnap("ACME", "2022Q4")))

	entities, err := store.ListEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME", "BETA"}, entities)

	periods, err := store.ListPeriods(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, "2022Q4", periods[0].String())
	assert.Equal(t, "2023Q4", periods[2].String())

	series, err := store.LoadSeries(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.True(t, series[0].Period.Before(series[1].Period))
}

func TestFileStoreEntityIDWithUnderscore(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSnap("KR_005930", "2023Q4")))

	entities, err := store.ListEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"KR_005930"}, entities)

	loaded, err := store.Load(ctx, "KR_005930", contracts.Period{Year: 2023, Season: 4})
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "KR_005930", loaded.EntityID)
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{}"), 0o644))
	require.NoError(t, store.Save(context.Background(), storedSnap("ACME", "2023Q4")))

	entities, err := store.ListEntities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME"}, entities)
}

func TestFileStoreRejectsMissingDirectory(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope"), logger.Nop())
	require.Error(t, err)
}

func TestDTOValidation(t *testing.T) {
	valid := SnapshotDTO{EntityID: "ACME", Period: "2023Q4", Currency: "USD", Unit: "million"}

	s, err := valid.ToSnapshot()
	require.NoError(t, err)
	assert.Equal(t, contracts.Period{Year: 2023, Season: 4}, s.Period)

	cases := []struct {
		name   string
		mutate func(*SnapshotDTO)
	}{
		{"missing entity id", func(d *SnapshotDTO) { d.EntityID = "" }},
		{"lowercase currency", func(d *SnapshotDTO) { d.Currency = "usd" }},
		{"long currency", func(d *SnapshotDTO) { d.Currency = "USDT" }},
		{"unknown unit", func(d *SnapshotDTO) { d.Unit = "trillion" }},
		{"malformed period", func(d *SnapshotDTO) { d.Period = "2023-Q4" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := valid
			tc.mutate(&dto)
			_, err := dto.ToSnapshot()
			assert.Error(t, err)
		})
	}
}

func TestDTORejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.Nop())
	require.NoError(t, err)

	path := filepath.Join(dir, "ACME_2023Q4.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entity_id": "ACME"`), 0o644))

	_, err = store.Load(context.Background(), "ACME", contracts.Period{Year: 2023, Season: 4})
	require.Error(t, err)
}
