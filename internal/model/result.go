package model

// Stage identifies one step of the per-site scoring sequence.
type Stage string

const (
	StageFederal     Stage = "federal"
	StageOpportunity Stage = "opportunity"
	StageAmenities   Stage = "amenities"
	StageTransit     Stage = "transit"
	StageCompetition Stage = "competition"
)

// Stages is the fixed evaluation order.
var Stages = []Stage{
	StageFederal,
	StageOpportunity,
	StageAmenities,
	StageTransit,
	StageCompetition,
}

// StageStatus records how a stage ended.
type StageStatus string

const (
	StageSuccess     StageStatus = "success"
	StageUnavailable StageStatus = "unavailable"
	StageError       StageStatus = "error"
)

// Tier is the recommendation band derived from the composite score.
type Tier string

const (
	TierEliminate     Tier = "eliminate"
	TierPoor          Tier = "poor"
	TierGood          Tier = "good"
	TierHighPotential Tier = "high_potential"
	TierExceptional   Tier = "exceptional"
)

// Program identifies a credit program track.
type Program string

const (
	Program4Pct Program = "4pct"
	Program9Pct Program = "9pct"
)

// AreaMatch is one designated-area containment hit.
type AreaMatch struct {
	Layer string `json:"layer"`
	Name  string `json:"name"`
}

// AmenityScore is the per-category audit detail of the amenity stage.
type AmenityScore struct {
	Points          float64 `json:"points"`
	NearestFacility string  `json:"nearest_facility,omitempty"`
	DistanceMiles   float64 `json:"distance_miles,omitempty"`
	SecondaryCredit float64 `json:"secondary_credit,omitempty"`
}

// TransitDetail is the audit detail of the transit stage.
type TransitDetail struct {
	QualifyingStops        int      `json:"qualifying_stops"`
	HighFrequencyValidated int      `json:"high_frequency_validated"`
	BestHeadwayMinutes     *float64 `json:"best_headway_minutes,omitempty"`
	DensityBonusApplied    bool     `json:"density_bonus_applied"`
}

// Conflict is one competing-project hit with the rule that flagged it.
type Conflict struct {
	Name          string  `json:"name"`
	AwardYear     int     `json:"award_year"`
	DistanceMiles float64 `json:"distance_miles"`
	Rule          string  `json:"rule"`
	Program       Program `json:"program"`
}

// CompetitionFlags is the per-program elimination outcome. Competition rules
// only ever eliminate the 9% track.
type CompetitionFlags struct {
	Eliminated4Pct bool       `json:"4pct"`
	Eliminated9Pct bool       `json:"9pct"`
	Conflicts      []Conflict `json:"conflicts,omitempty"`
}

// StageOutcome records how one stage ran for a site.
type StageOutcome struct {
	Stage  Stage       `json:"stage"`
	Status StageStatus `json:"status"`
	Points float64     `json:"points"`
	Reason string      `json:"reason,omitempty"`
}

// ScoringResult is the full screening output for one site.
type ScoringResult struct {
	SiteID       string `json:"site_id"`
	SiteName     string `json:"site_name,omitempty"`
	State        string `json:"state"`
	ProgramYear  int    `json:"program_year"`
	RulesVersion string `json:"rules_version"`

	FederalEligible bool        `json:"federal_eligible"`
	FederalAreas    []AreaMatch `json:"federal_areas,omitempty"`

	OpportunityCategory string `json:"opportunity_category"`
	ManualReview        bool   `json:"manual_review_required"`

	AmenityBreakdown map[string]AmenityScore `json:"amenity_breakdown"`
	AmenityTotal     float64                 `json:"amenity_total"`

	TransitPoints float64       `json:"transit_points"`
	Transit       TransitDetail `json:"transit_detail"`

	Competition CompetitionFlags `json:"competition"`

	Score4Pct float64 `json:"score_4pct"`
	Score9Pct float64 `json:"score_9pct"`

	RecommendationTier Tier           `json:"recommendation_tier"`
	Stages             []StageOutcome `json:"stages"`
	PartialResult      bool           `json:"partial_result"`
}
