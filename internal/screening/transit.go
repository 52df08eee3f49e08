package screening

import (
	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// TransitResult is the transit-access outcome for one site.
type TransitResult struct {
	Points float64
	Detail model.TransitDetail
	Status model.StageStatus
	Reason string
}

// ScoreTransit counts qualifying stops within the short walk radius, credits
// validated high-frequency service, and applies the residential density bonus,
// all capped at the published transit ceiling. Stops without a validated peak
// headway count toward stop density but never toward frequency credit.
func ScoreTransit(store *layers.Store, site model.Site, rules config.TransitRules) TransitResult {
	if !store.Availability().Transit {
		return TransitResult{
			Status: model.StageUnavailable,
			Reason: "transit layer not loaded",
		}
	}

	stops := store.TransitStopsWithin(site.Point(), rules.OuterRadiusMiles)

	detail := model.TransitDetail{}
	for _, stop := range stops {
		if stop.DistanceMiles > rules.QualifyingRadiusMiles {
			continue
		}
		detail.QualifyingStops++
		if stop.PeakHeadwayMinutes == nil {
			continue
		}
		h := *stop.PeakHeadwayMinutes
		if h <= rules.HighFrequencyMaxHeadway {
			detail.HighFrequencyValidated++
		}
		if detail.BestHeadwayMinutes == nil || h < *detail.BestHeadwayMinutes {
			best := h
			detail.BestHeadwayMinutes = &best
		}
	}

	points := tierPoints(rules.CountTiers, detail.QualifyingStops) +
		tierPoints(rules.HighFrequencyTiers, detail.HighFrequencyValidated)

	if site.ResidentialDensity != nil && *site.ResidentialDensity >= rules.DensityBonus.MinUnitsPerAcre {
		points += rules.DensityBonus.Points
		detail.DensityBonusApplied = true
	}

	if points > rules.MaxPoints {
		points = rules.MaxPoints
	}
	return TransitResult{Points: points, Detail: detail, Status: model.StageSuccess}
}

// tierPoints returns the points of the highest tier whose minimum count the
// value satisfies, or zero below the first tier.
func tierPoints(tiers []config.CountTier, n int) float64 {
	points := 0.0
	for _, t := range tiers {
		if n >= t.MinCount {
			points = t.Points
		}
	}
	return points
}
