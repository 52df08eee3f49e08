package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/sitescreen/internal/model"
	"github.com/parcelworks/sitescreen/internal/screening"
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

func sampleResult(siteID string, score float64, tier model.Tier) *model.ScoringResult {
	return &model.ScoringResult{
		SiteID:             siteID,
		State:              "TX",
		ProgramYear:        2025,
		RulesVersion:       "builtin-2025.1",
		FederalEligible:    true,
		Score4Pct:          score,
		Score9Pct:          score,
		RecommendationTier: tier,
	}
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "TX", 2025, "builtin-2025.1")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	summary := &screening.BatchSummary{Total: 2, Succeeded: 2, Elapsed: 3 * time.Second}
	require.NoError(t, st.CompleteRun(ctx, run.ID, summary))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusComplete, got.Status)
	assert.Equal(t, "TX", got.State)
	assert.Equal(t, 2025, got.ProgramYear)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 2, got.Summary.Total)
}

func TestSQLite_RunNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.GetRun(ctx, "missing")
	assert.Error(t, err)

	err = st.UpdateRunStatus(ctx, "missing", RunStatusFailed)
	assert.Error(t, err)
}

func TestSQLite_FailedRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "TX", 2025, "builtin-2025.1")
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, RunStatusFailed))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Nil(t, got.Summary)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	tx, err := st.CreateRun(ctx, "TX", 2025, "builtin-2025.1")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "GA", 2025, "builtin-2025.1")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, tx.ID, &screening.BatchSummary{Total: 1, Succeeded: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byState, err := st.ListRuns(ctx, RunFilter{State: "TX"})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, tx.ID, byState[0].ID)

	complete, err := st.ListRuns(ctx, RunFilter{Status: RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, tx.ID, complete[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_SaveAndListResults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "TX", 2025, "builtin-2025.1")
	require.NoError(t, err)

	ranked := []*model.ScoringResult{
		sampleResult("site-b", 72, model.TierHighPotential),
		sampleResult("site-a", 55, model.TierGood),
		sampleResult("site-c", 0, model.TierEliminate),
	}
	ranked[2].Competition.Eliminated9Pct = true
	require.NoError(t, st.SaveResults(ctx, run.ID, ranked))

	got, err := st.ListResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ranked order survives the round trip.
	assert.Equal(t, "site-b", got[0].SiteID)
	assert.Equal(t, "site-a", got[1].SiteID)
	assert.Equal(t, "site-c", got[2].SiteID)
	assert.Equal(t, model.TierEliminate, got[2].RecommendationTier)
	assert.True(t, got[2].Competition.Eliminated9Pct)
}

func TestSQLite_ListResults_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.ListResults(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, got)
}
