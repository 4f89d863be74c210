package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartfield-labs/factfind/internal/eval"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "exp-a1b2c3d4", "conversation_1")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, RunStatusRunning))

	metrics := eval.Metrics{OverallAccuracy: 0.75, F1Score: 0.8, TotalFields: 4}
	require.NoError(t, s.SaveEvaluation(ctx, run.ID, metrics))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusEvaluated, got.Status)
	require.NotNil(t, got.Metrics)
	assert.InDelta(t, 0.75, got.Metrics.OverallAccuracy, 1e-9)
	assert.Equal(t, 4, got.Metrics.TotalFields)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_UpdateMissingRun(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateRunStatus(context.Background(), "no-such-run", RunStatusFailed)
	assert.Error(t, err)
}

func TestSQLiteStore_ListRunsFiltered(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "exp-aaaa", "conversation_1")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "exp-aaaa", "conversation_2")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "exp-bbbb", "conversation_1")
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, a.ID, RunStatusFailed))

	runs, err := s.ListRuns(ctx, RunFilter{Experiment: "exp-aaaa"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Experiment: "exp-aaaa", Status: RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
