package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.Storage = (*SQLiteStorage)(nil)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testItem(id string, tier model.Tier, daysOld int) model.DecisionItem {
	return model.DecisionItem{
		ID:        id,
		Surface:   model.SurfaceAction,
		Severity:  model.SeverityOrange,
		Category:  model.CategoryProcess,
		Tier:      tier,
		Title:     "Item " + id,
		CreatedAt: baseTime.AddDate(0, 0, -daysOld),
	}
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	for _, table := range []string{"items", "runs", "run_items"} {
		var count int
		err := store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, "sqlite::memory:", store.Name())
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSaveAndListItems(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	full := testItem("idea-1", model.TierCapital, 3)
	full.TitleKey = model.KeyIdeaNotSimulated
	full.Description = "Needs a simulation"
	full.Dismissible = true
	full.Chips = []model.Chip{{Label: "Growth", Value: "2"}}
	full.Context = model.ItemContext{
		PortfolioID:   "p-1",
		PortfolioName: "Growth",
		AssetSymbol:   "ACME",
	}
	full.CTAs = []model.CTA{{
		Label:     "Simulate",
		ActionKey: "OPEN_TRADE_QUEUE_FILTER",
		Kind:      "primary",
		Payload:   map[string]any{"filter": "unsimulated"},
	}}
	full.Children = []model.DecisionItem{testItem("child-1", model.TierCapital, 5)}

	items := []model.DecisionItem{
		full,
		testItem("cov-1", model.TierCoverage, 10),
		testItem("int-1", model.TierIntegrity, 1),
	}
	require.NoError(t, store.SaveItems(ctx, "fixtures.json", items))

	got, err := store.ListItems(ctx, service.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"cov-1", "idea-1", "int-1"}, model.IDs(got), "oldest first")

	loaded := got[1]
	assert.Equal(t, full.Title, loaded.Title)
	assert.Equal(t, full.Description, loaded.Description)
	assert.Equal(t, full.TitleKey, loaded.TitleKey)
	assert.True(t, loaded.Dismissible)
	assert.True(t, full.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, full.Chips, loaded.Chips)
	assert.Equal(t, full.Context, loaded.Context)
	require.Len(t, loaded.CTAs, 1)
	assert.Equal(t, "unsimulated", loaded.CTAs[0].Payload["filter"])
	require.Len(t, loaded.Children, 1)
	assert.Equal(t, "child-1", loaded.Children[0].ID)

	assert.Nil(t, got[0].Chips)
	assert.Nil(t, got[0].Children)

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSaveItems_Upsert(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	item := testItem("a", model.TierCoverage, 1)
	require.NoError(t, store.SaveItems(ctx, "first", []model.DecisionItem{item}))

	item.Title = "Updated"
	item.Tier = model.TierCapital
	require.NoError(t, store.SaveItems(ctx, "second", []model.DecisionItem{item}))

	got, err := store.ListItems(ctx, service.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Updated", got[0].Title)
	assert.Equal(t, model.TierCapital, got[0].Tier)

	fromSecond, err := store.ListItems(ctx, service.ItemFilter{Source: "second"})
	require.NoError(t, err)
	assert.Len(t, fromSecond, 1)
}

func TestSaveItems_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.SaveItems(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrEmptySlice)

	bad := testItem("", model.TierCapital, 0)
	err = store.SaveItems(ctx, "x", []model.DecisionItem{testItem("ok", model.TierCapital, 0), bad})
	assert.ErrorIs(t, err, model.ErrInvalidItem)

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "nothing is stored when any item is invalid")
}

func TestListItems_Filters(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	idea := testItem("idea", model.TierCapital, 8)
	idea.TitleKey = model.KeyIdeaNotSimulated
	stale := testItem("stale", model.TierCoverage, 4)
	stale.TitleKey = model.KeyThesisStale
	info := testItem("info", model.TierIntegrity, 2)
	info.Surface = model.SurfaceInformational

	require.NoError(t, store.SaveItems(ctx, "a", []model.DecisionItem{idea, stale}))
	require.NoError(t, store.SaveItems(ctx, "b", []model.DecisionItem{info}))

	since := baseTime.AddDate(0, 0, -5)

	tests := []struct {
		name   string
		filter service.ItemFilter
		want   []string
	}{
		{name: "all", filter: service.ItemFilter{}, want: []string{"idea", "stale", "info"}},
		{
			name:   "tiers",
			filter: service.ItemFilter{Tiers: []model.Tier{model.TierCapital, model.TierIntegrity}},
			want:   []string{"idea", "info"},
		},
		{
			name:   "title keys",
			filter: service.ItemFilter{TitleKeys: []model.TitleKey{model.KeyThesisStale}},
			want:   []string{"stale"},
		},
		{name: "surface", filter: service.ItemFilter{Surface: model.SurfaceInformational}, want: []string{"info"}},
		{name: "source", filter: service.ItemFilter{Source: "a"}, want: []string{"idea", "stale"}},
		{name: "since", filter: service.ItemFilter{Since: &since}, want: []string{"stale", "info"}},
		{name: "limit", filter: service.ItemFilter{Limit: 2}, want: []string{"idea", "stale"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListItems(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, model.IDs(got))
		})
	}

	_, err := store.ListItems(ctx, service.ItemFilter{Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestDeleteItems(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveItems(ctx, "a", []model.DecisionItem{
		testItem("a", model.TierCapital, 1),
		testItem("b", model.TierCapital, 2),
		testItem("c", model.TierCapital, 3),
	}))

	n, err := store.DeleteItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.DeleteItems(ctx, "a", "c", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := store.ListItems(ctx, service.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, model.IDs(got))
}

func TestItems_ImplementsSource(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveItems(ctx, "a", []model.DecisionItem{testItem("a", model.TierCapital, 1)}))

	got, err := store.Items(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, model.IDs(got))
	assert.Equal(t, "sqlite:test.db", store.Name())
}

func TestClassify(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.ErrorIs(t, classify(busy), common.ErrBusy)
	assert.True(t, common.IsRetryable(classify(busy)))

	locked := sqlite3.Error{Code: sqlite3.ErrLocked}
	assert.ErrorIs(t, classify(locked), common.ErrBusy)

	other := errors.New("boom")
	assert.Equal(t, other, classify(other))
}
