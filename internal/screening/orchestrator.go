package screening

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// Orchestrator runs the fixed stage sequence for each site: federal
// eligibility, opportunity area, amenities, transit, competition. Stages that
// lose their data degrade to partial results; only invalid site input fails
// a site outright. An Orchestrator is stateless across sites and safe for
// concurrent use.
type Orchestrator struct {
	store *layers.Store
	rules *config.RuleBook
	obs   Observer
}

// NewOrchestrator builds an orchestrator over a layer store and rule book.
// A nil observer disables progress events.
func NewOrchestrator(store *layers.Store, rules *config.RuleBook, obs Observer) *Orchestrator {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Orchestrator{store: store, rules: rules, obs: obs}
}

// Score evaluates one site through every stage and assembles the result.
// It returns an error only for invalid input; degraded reference data is
// reported through stage statuses and the partial-result flag instead.
func (o *Orchestrator) Score(site model.Site) (*model.ScoringResult, error) {
	if err := model.ValidateSite(site); err != nil {
		return nil, eris.Wrap(err, "screening: invalid site")
	}

	rules := o.rules.Resolve(site.State, site.ProgramYear)
	result := &model.ScoringResult{
		SiteID:       site.ID,
		SiteName:     site.Name,
		State:        site.State,
		ProgramYear:  site.ProgramYear,
		RulesVersion: rules.Version,
	}

	for _, stage := range model.Stages {
		start := time.Now()
		outcome := o.runStage(stage, site, rules, result)
		result.Stages = append(result.Stages, outcome)
		if outcome.Status != model.StageSuccess {
			result.PartialResult = true
		}
		o.obs.StageComplete(site.ID, stage, outcome.Status, time.Since(start))
	}

	o.finalize(result, rules)
	o.obs.SiteFinalized(result)
	return result, nil
}

// runStage dispatches one stage and folds its detail into the result. Each
// stage reads only the site and the layer store, never a prior stage's
// output, so a degraded stage cannot corrupt the ones after it.
func (o *Orchestrator) runStage(stage model.Stage, site model.Site, rules config.Rules, result *model.ScoringResult) model.StageOutcome {
	outcome := model.StageOutcome{Stage: stage, Status: model.StageSuccess}

	switch stage {
	case model.StageFederal:
		fed := EvaluateFederal(o.store, site.Point())
		result.FederalEligible = fed.Eligible
		result.FederalAreas = fed.Areas
		if fed.Eligible {
			outcome.Points = rules.Federal.BasisBoostPoints
		}

	case model.StageOpportunity:
		opp := ResolveOpportunity(o.store, site, rules)
		result.OpportunityCategory = opp.Category
		result.ManualReview = opp.ManualReview
		outcome.Points = opp.Points
		outcome.Status = opp.Status
		outcome.Reason = opp.Reason

	case model.StageAmenities:
		am := ScoreAmenities(o.store, site.Point(), rules.Amenity)
		result.AmenityBreakdown = am.Breakdown
		result.AmenityTotal = am.Total
		outcome.Points = am.Total
		outcome.Status = am.Status
		outcome.Reason = am.Reason

	case model.StageTransit:
		tr := ScoreTransit(o.store, site, rules.Transit)
		result.TransitPoints = tr.Points
		result.Transit = tr.Detail
		outcome.Points = tr.Points
		outcome.Status = tr.Status
		outcome.Reason = tr.Reason

	case model.StageCompetition:
		comp := EvaluateCompetition(o.store, site, rules.Competition)
		result.Competition = comp.Flags
		outcome.Status = comp.Status
		outcome.Reason = comp.Reason
	}

	return outcome
}

// finalize computes the per-program scores and the recommendation tier.
// Competition zeroes the 9% track; the tier bands read the pre-elimination
// score so an eliminated site still shows what it would have earned.
func (o *Orchestrator) finalize(result *model.ScoringResult, rules config.Rules) {
	score := 0.0
	for _, s := range result.Stages {
		score += s.Points
	}
	result.Score4Pct = score
	result.Score9Pct = score
	if result.Competition.Eliminated9Pct {
		result.Score9Pct = 0
		result.RecommendationTier = model.TierEliminate
		return
	}
	result.RecommendationTier = tierFor(score, rules.Tiers)
}

func tierFor(score float64, bands config.TierBands) model.Tier {
	switch {
	case score >= bands.Exceptional:
		return model.TierExceptional
	case score >= bands.HighPotential:
		return model.TierHighPotential
	case score >= bands.Good:
		return model.TierGood
	default:
		return model.TierPoor
	}
}
