package screening

import (
	"strings"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// OpportunityUnknown is reported when no category can be resolved for a site.
const OpportunityUnknown = "unknown"

// OpportunityResult is the opportunity-area outcome for one site.
type OpportunityResult struct {
	Category     string
	Points       float64
	ManualReview bool
	Status       model.StageStatus
	Reason       string
}

// ResolveOpportunity looks up the site's tract in the opportunity table for
// its state and program year. A site without a resolved tract is flagged for
// manual review; an absent tract/state/year combination degrades to zero
// points without failing the evaluation.
func ResolveOpportunity(store *layers.Store, site model.Site, rules config.Rules) OpportunityResult {
	tract := strings.TrimSpace(site.CensusTract)
	if tract == "" {
		return OpportunityResult{
			Category:     OpportunityUnknown,
			ManualReview: true,
			Status:       model.StageUnavailable,
			Reason:       "census tract not resolved",
		}
	}

	rec := store.OpportunityCategory(tract, site.State, site.ProgramYear)
	if rec == nil {
		return OpportunityResult{
			Category: OpportunityUnknown,
			Status:   model.StageSuccess,
			Reason:   "no published record for tract",
		}
	}

	category := strings.ToLower(strings.TrimSpace(rec.Category))
	points := rec.Points
	if points <= 0 {
		points = rules.Opportunity.Points[category]
	}
	return OpportunityResult{
		Category: category,
		Points:   points,
		Status:   model.StageSuccess,
	}
}
