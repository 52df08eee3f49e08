package screening

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/geometry"
	"github.com/parcelworks/sitescreen/internal/model"
)

func batchSites() []model.Site {
	good := scoringSite()

	conflicted := scoringSite()
	conflicted.ID = "site-conflicted"
	conflicted.Latitude = 30.2428
	conflicted.Longitude = -97.60

	invalid := scoringSite()
	invalid.ID = "site-bad-coords"
	invalid.Latitude = 95

	remote := model.Site{
		ID:          "site-houston-01",
		Latitude:    29.75,
		Longitude:   -95.35,
		CensusTract: "48201310100",
		State:       "TX",
		County:      "Harris",
		ProgramYear: 2025,
	}
	return []model.Site{good, conflicted, invalid, remote}
}

func TestRunBatch(t *testing.T) {
	collector := NewCollector()
	orch := NewOrchestrator(testStore(t), config.DefaultRuleBook(), collector)

	sites := batchSites()
	items, summary := orch.RunBatch(context.Background(), sites, 4)

	require.Len(t, items, len(sites))
	assert.Equal(t, len(sites), summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// Items stay in input order regardless of completion order.
	for i, site := range sites {
		assert.Equal(t, site.ID, items[i].Site.ID)
	}
	require.Error(t, items[2].Err)
	assert.ErrorIs(t, items[2].Err, geometry.ErrInvalidCoordinate)
	assert.Nil(t, items[2].Result)
	for _, i := range []int{0, 1, 3} {
		require.NoError(t, items[i].Err)
		require.NotNil(t, items[i].Result)
	}

	results := Results(items)
	require.Len(t, results, 3)

	snap := collector.Snapshot()
	assert.Equal(t, 3, snap.SitesScored)
	assert.Equal(t, 1, snap.Eliminated9Pct)
	assert.Zero(t, snap.PartialResults)
	assert.Equal(t, 3, snap.StageStatuses[model.StageFederal][model.StageSuccess])
}

func TestRunBatch_MatchesSequential(t *testing.T) {
	orch := testOrchestrator(t)
	sites := []model.Site{batchSites()[0], batchSites()[3]}

	items, _ := orch.RunBatch(context.Background(), sites, 2)
	for i, site := range sites {
		want, err := orch.Score(site)
		require.NoError(t, err)
		assert.Equal(t, want, items[i].Result)
	}
}

func TestRunBatch_CancelledContext(t *testing.T) {
	orch := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, summary := orch.RunBatch(ctx, batchSites(), 1)
	assert.Equal(t, summary.Total, summary.Failed)
	for _, it := range items {
		assert.Error(t, it.Err)
		assert.Nil(t, it.Result)
	}
}

func TestRunBatch_ClampsConcurrency(t *testing.T) {
	orch := testOrchestrator(t)
	items, summary := orch.RunBatch(context.Background(), batchSites()[:1], 0)
	require.Len(t, items, 1)
	assert.Equal(t, 1, summary.Succeeded)
}
