package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateRun_And_GetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	input := model.RunInput{
		BrandName:   "Zenflow",
		Category:    "YouTube Channel",
		Positioning: "Mid-Range",
		Regions:     []string{"India", "USA"},
	}
	run, err := st.CreateRun(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.Equal(t, "Zenflow", run.Input.BrandName)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, fetched.ID)
	assert.Equal(t, []string{"India", "USA"}, fetched.Input.Regions)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)

	err = st.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching)
	require.NoError(t, err)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSearching, fetched.Status)
}

func TestSQLite_UpdateRunStatus_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusSearching)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)

	result := &model.PipelineRun{
		Candidates: []model.Candidate{
			{Name: "Acme", Category: model.CategoryIndirect, X: 3, Y: 9, Regions: []string{"GLOBAL"}},
		},
		WhiteSpace: model.WhiteSpaceReport{Verdict: model.VerdictGreen},
		Meta:       model.RunMeta{DurationMs: 1200},
	}
	err = st.UpdateRunResult(ctx, run.ID, result)
	require.NoError(t, err)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, fetched.Status)
	require.NotNil(t, fetched.Result)
	assert.Equal(t, model.VerdictGreen, fetched.Result.WhiteSpace.Verdict)
	require.Len(t, fetched.Result.Candidates, 1)
	assert.Equal(t, "Acme", fetched.Result.Candidates[0].Name)
}

func TestSQLite_MarkRunFailed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)

	err = st.MarkRunFailed(ctx, run.ID, "context canceled")
	require.NoError(t, err)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, fetched.Status)
	assert.Equal(t, "context canceled", fetched.Error)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.RunInput{BrandName: "Calmly", Category: "Meditation App"})
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLite_ListRuns_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)
	err = st.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete)
	require.NoError(t, err)

	_, err = st.CreateRun(ctx, model.RunInput{BrandName: "Calmly", Category: "Meditation App"})
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestSQLite_ListRuns_FilterByBrand(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.RunInput{BrandName: "Calmly", Category: "Meditation App"})
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{BrandName: "Calmly", Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Calmly", runs[0].Input.BrandName)
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.Migrate(context.Background())
	require.NoError(t, err)
}
