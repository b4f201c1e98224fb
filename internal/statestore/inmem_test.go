package statestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/statestore"
)

func TestInMemStore_CreateThenGet_RoundTrips(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	execCtx := model.ExecutionContext{ExecutionID: "exec_abc", TeamID: "ht_123456789", StartedAt: time.Now()}

	require.NoError(t, store.Create(ctx, "exec_abc", "ht_123456789", execCtx))

	got, err := store.Get(ctx, "exec_abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "exec_abc", got.ExecutionID)
	assert.Equal(t, "ht_123456789", got.TeamID)
	assert.Equal(t, execCtx.ExecutionID, got.Context.ExecutionID)
	assert.True(t, got.UpdatedAt.Equal(got.CreatedAt) || got.UpdatedAt.After(got.CreatedAt))
}

func TestInMemStore_Create_AlreadyExists(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "exec1", "team1", model.ExecutionContext{}))

	err := store.Create(ctx, "exec1", "team1", model.ExecutionContext{})
	require.Error(t, err)
	assert.Equal(t, errs.KindAlreadyExists, errs.KindOf(err))
}

func TestInMemStore_MutationsBumpUpdatedAt(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "exec1", "team1", model.ExecutionContext{}))

	first, err := store.Get(ctx, "exec1")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.UpdateStatus(ctx, "exec1", model.StatusRunning))

	second, err := store.Get(ctx, "exec1")
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(second.CreatedAt) || second.UpdatedAt.Equal(second.CreatedAt))
	assert.Equal(t, model.StatusRunning, second.Status)
}

func TestInMemStore_Get_AbsentReturnsNil(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemStore_UpdateUnknownExecution_NotFound(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	err := store.UpdateStatus(context.Background(), "missing", model.StatusRunning)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestInMemStore_List_FiltersByTeamAndStatus(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "e1", "teamA", model.ExecutionContext{}))
	require.NoError(t, store.Create(ctx, "e2", "teamB", model.ExecutionContext{}))
	require.NoError(t, store.UpdateStatus(ctx, "e1", model.StatusCompleted))

	ids, err := store.List(ctx, "teamA", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)

	ids, err = store.List(ctx, "", model.StatusCompleted, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)
}

func TestInMemStore_Stats(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "e1", "teamA", model.ExecutionContext{}))
	require.NoError(t, store.Create(ctx, "e2", "teamB", model.ExecutionContext{}))
	require.NoError(t, store.UpdateStatus(ctx, "e1", model.StatusCompleted))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalExecutions)
	assert.Equal(t, 1, stats.ByStatus[model.StatusCompleted])
}

func TestInMemStore_DeleteRemovesKey(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "e1", "teamA", model.ExecutionContext{}))
	require.NoError(t, store.Delete(ctx, "e1"))

	got, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
