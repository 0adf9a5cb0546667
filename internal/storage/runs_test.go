package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndGetRun(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	shown := []model.DecisionItem{
		testItem("a", model.TierCapital, 2),
		testItem("b", model.TierCoverage, 1),
	}
	shown[0].SortScore = 32002
	shown[1].Children = []model.DecisionItem{testItem("c1", model.TierCoverage, 1)}

	run, err := store.RecordRun(ctx, service.Run{
		EvaluatedAt: baseTime,
		ActionCount: 9,
		Items:       service.RunItemsFrom(shown, []string{"top", "tier"}),
	})
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, baseTime.Equal(got.EvaluatedAt))
	assert.Equal(t, 9, got.ActionCount)
	require.Len(t, got.Items, 2)

	assert.Equal(t, "a", got.Items[0].ItemID)
	assert.Equal(t, 0, got.Items[0].Position)
	assert.Equal(t, 32002, got.Items[0].SortScore)
	assert.Equal(t, "top", got.Items[0].Pass)
	assert.Equal(t, model.TierCapital, got.Items[0].Tier)

	assert.Equal(t, "b", got.Items[1].ItemID)
	assert.Equal(t, 1, got.Items[1].ChildCount)
	assert.Equal(t, "tier", got.Items[1].Pass)
}

func TestRecordRun_AssignsIDs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	ids := []string{"run-1", "run-2"}
	store.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := store.RecordRun(ctx, service.Run{EvaluatedAt: baseTime})
	require.NoError(t, err)
	second, err := store.RecordRun(ctx, service.Run{EvaluatedAt: baseTime.AddDate(0, 0, 1)})
	require.NoError(t, err)

	assert.Equal(t, "run-1", first.ID)
	assert.Equal(t, "run-2", second.ID)

	explicit, err := store.RecordRun(ctx, service.Run{ID: "mine", EvaluatedAt: baseTime})
	require.NoError(t, err)
	assert.Equal(t, "mine", explicit.ID)
}

func TestRecordRun_RequiresEvaluatedAt(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.RecordRun(context.Background(), service.Run{})
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestListRuns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for i, id := range []string{"old", "mid", "new"} {
		_, err := store.RecordRun(ctx, service.Run{ID: id, EvaluatedAt: baseTime.AddDate(0, 0, i)})
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[2].ID)
	assert.Empty(t, runs[0].Items, "list does not load items")

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "mid", limited[1].ID)

	_, err = store.ListRuns(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestGetRun_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteRun(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.RecordRun(ctx, service.Run{
		ID:          "r",
		EvaluatedAt: baseTime,
		Items:       service.RunItemsFrom([]model.DecisionItem{testItem("a", model.TierCapital, 1)}, nil),
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteRun(ctx, "r"))

	var orphans int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_items`).Scan(&orphans))
	assert.Zero(t, orphans, "run items cascade with their run")

	assert.ErrorIs(t, store.DeleteRun(ctx, "r"), common.ErrNotFound)
}
