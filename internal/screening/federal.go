// Package screening scores candidate sites against the loaded reference
// layers: federal designated-area eligibility, opportunity-area points,
// amenity and transit proximity points, and competition elimination rules,
// composed per site by the Orchestrator.
package screening

import (
	"github.com/parcelworks/sitescreen/internal/geometry"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// FederalResult is the basis-boost eligibility outcome for one site.
type FederalResult struct {
	Eligible bool
	Areas    []model.AreaMatch
}

// EvaluateFederal resolves designated-area membership by pure containment.
// One hit from either federal layer is sufficient; there is no partial credit
// and no distance sensitivity.
func EvaluateFederal(store *layers.Store, pt geometry.Point) FederalResult {
	hits := store.DesignatedAreaHits(pt)
	return FederalResult{
		Eligible: len(hits) > 0,
		Areas:    hits,
	}
}
