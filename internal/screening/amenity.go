package screening

import (
	"sort"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/geometry"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// AmenityResult is the amenity-proximity outcome for one site.
type AmenityResult struct {
	Breakdown map[string]model.AmenityScore
	Total     float64
	Status    model.StageStatus
	Reason    string
}

// ScoreAmenities scores each configured category by the nearest qualifying
// facility's distance tier, adds diminished secondary credit where the
// category allows it, and caps the aggregate at the published maximum.
func ScoreAmenities(store *layers.Store, pt geometry.Point, rules config.AmenityRules) AmenityResult {
	if !store.Availability().Amenities {
		return AmenityResult{
			Breakdown: map[string]model.AmenityScore{},
			Status:    model.StageUnavailable,
			Reason:    "amenity layer not loaded",
		}
	}

	// Categories in name order so the capped total sums identically per run.
	categories := make([]string, 0, len(rules.Categories))
	for cat := range rules.Categories {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	breakdown := make(map[string]model.AmenityScore, len(categories))
	total := 0.0
	for _, cat := range categories {
		rule := rules.Categories[cat]
		score := scoreCategory(store, pt, cat, rule)
		breakdown[cat] = score
		total += score.Points + score.SecondaryCredit
	}

	if total > rules.MaxTotal {
		total = rules.MaxTotal
	}
	return AmenityResult{Breakdown: breakdown, Total: total, Status: model.StageSuccess}
}

func scoreCategory(store *layers.Store, pt geometry.Point, cat string, rule config.AmenityRule) model.AmenityScore {
	hits := store.AmenitiesWithin(pt, cat, rule.MaxRadiusMiles())

	qualifying := hits[:0:0]
	for _, h := range hits {
		if rule.MinSquareFeet > 0 && h.SquareFeet < rule.MinSquareFeet {
			continue
		}
		qualifying = append(qualifying, h)
	}
	if len(qualifying) == 0 {
		return model.AmenityScore{}
	}

	nearest := qualifying[0]
	score := model.AmenityScore{
		Points:          rule.PointsAt(nearest.DistanceMiles),
		NearestFacility: nearest.Name,
		DistanceMiles:   nearest.DistanceMiles,
	}
	if rule.SecondaryCredit && len(qualifying) > 1 {
		second := qualifying[1]
		score.SecondaryCredit = rule.PointsAt(second.DistanceMiles) * rule.SecondaryFactor
	}
	return score
}
