package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/model"
)

func TestResolveOpportunity(t *testing.T) {
	store := testStore(t)
	rules := config.DefaultRules()

	t.Run("category points from rule table", func(t *testing.T) {
		opp := ResolveOpportunity(store, scoringSite(), rules)
		assert.Equal(t, "highest", opp.Category)
		assert.Equal(t, 20.0, opp.Points)
		assert.False(t, opp.ManualReview)
		assert.Equal(t, model.StageSuccess, opp.Status)
	})

	t.Run("published points win over rule table", func(t *testing.T) {
		site := scoringSite()
		site.CensusTract = "48201310100"
		opp := ResolveOpportunity(store, site, rules)
		assert.Equal(t, "moderate", opp.Category)
		assert.Equal(t, 9.0, opp.Points)
	})

	t.Run("prior year resolves its own record", func(t *testing.T) {
		site := scoringSite()
		site.ProgramYear = 2024
		opp := ResolveOpportunity(store, site, rules)
		assert.Equal(t, "high", opp.Category)
		assert.Equal(t, 15.0, opp.Points)
	})

	t.Run("missing tract flags manual review", func(t *testing.T) {
		site := scoringSite()
		site.CensusTract = ""
		opp := ResolveOpportunity(store, site, rules)
		assert.Equal(t, OpportunityUnknown, opp.Category)
		assert.Zero(t, opp.Points)
		assert.True(t, opp.ManualReview)
		assert.Equal(t, model.StageUnavailable, opp.Status)
	})

	t.Run("unpublished combination degrades to zero", func(t *testing.T) {
		site := scoringSite()
		site.ProgramYear = 2019
		opp := ResolveOpportunity(store, site, rules)
		assert.Equal(t, OpportunityUnknown, opp.Category)
		assert.Zero(t, opp.Points)
		assert.False(t, opp.ManualReview)
		assert.Equal(t, model.StageSuccess, opp.Status)
	})
}
