package screening

import (
	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// Rule identifiers recorded on each conflict.
const (
	RuleShortRadius = "short_radius"
	RuleLargeRadius = "large_radius"
)

// CompetitionResult is the competition outcome for one site.
type CompetitionResult struct {
	Flags  model.CompetitionFlags
	Status model.StageStatus
	Reason string
}

// EvaluateCompetition applies the temporal-proximity rules against the
// awarded-project registry. Every conflicting project is recorded with the
// rule that flagged it; a single hit from either rule eliminates the 9%
// track. The 4% track is never eliminated by competition.
func EvaluateCompetition(store *layers.Store, site model.Site, rules config.CompetitionRules) CompetitionResult {
	if !store.Availability().CompetingProjects {
		return CompetitionResult{
			Status: model.StageUnavailable,
			Reason: "competing-project registry not loaded",
		}
	}

	flags := model.CompetitionFlags{}

	recent := store.CompetingProjectsWithin(
		site.Point(), rules.ShortRadiusMiles,
		site.ProgramYear-rules.RecencyYears, site.ProgramYear,
	)
	for _, hit := range recent {
		flags.Conflicts = append(flags.Conflicts, conflict(hit, RuleShortRadius))
	}

	if site.PopulationClass == model.PopulationLarge || rules.IsLargeJurisdiction(site.County) {
		sameYear := store.CompetingProjectsWithin(
			site.Point(), rules.LargeRadiusMiles,
			site.ProgramYear, site.ProgramYear,
		)
		for _, hit := range sameYear {
			flags.Conflicts = append(flags.Conflicts, conflict(hit, RuleLargeRadius))
		}
	}

	flags.Eliminated9Pct = len(flags.Conflicts) > 0
	return CompetitionResult{Flags: flags, Status: model.StageSuccess}
}

func conflict(hit layers.ProjectHit, rule string) model.Conflict {
	return model.Conflict{
		Name:          hit.Name,
		AwardYear:     hit.AwardYear,
		DistanceMiles: hit.DistanceMiles,
		Rule:          rule,
		Program:       hit.Program,
	}
}
