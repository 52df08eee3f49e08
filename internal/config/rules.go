package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Amenity category keys. The reference layers use the same identifiers.
const (
	CategoryGrocery          = "grocery"
	CategoryElementarySchool = "elementary_school"
	CategoryHighSchool       = "high_school"
	CategoryMedical          = "medical"
	CategoryPharmacy         = "pharmacy"
	CategoryPark             = "park"
)

// AmenityTier is one step of a distance-to-points table. Tables must be
// ordered by ascending distance with non-increasing points.
type AmenityTier struct {
	MaxDistanceMiles float64 `yaml:"max_distance_miles" mapstructure:"max_distance_miles"`
	Points           float64 `yaml:"points" mapstructure:"points"`
}

// AmenityRule holds the scoring policy for a single amenity category.
type AmenityRule struct {
	Tiers []AmenityTier `yaml:"tiers" mapstructure:"tiers"`

	// MinSquareFeet qualifies facilities by size (e.g. full-scale grocery).
	// Zero disables the threshold. Facilities with unknown size fail a
	// nonzero threshold.
	MinSquareFeet int `yaml:"min_square_feet" mapstructure:"min_square_feet"`

	// SecondaryCredit lets a second qualifying facility earn a diminished
	// share of its own tier points.
	SecondaryCredit bool    `yaml:"secondary_credit" mapstructure:"secondary_credit"`
	SecondaryFactor float64 `yaml:"secondary_factor" mapstructure:"secondary_factor"`
}

// MaxRadiusMiles is the category's maximum qualifying radius: the distance of
// its outermost tier.
func (r AmenityRule) MaxRadiusMiles() float64 {
	if len(r.Tiers) == 0 {
		return 0
	}
	return r.Tiers[len(r.Tiers)-1].MaxDistanceMiles
}

// PointsAt converts a distance to points via the step table. Beyond the
// outermost tier the category scores zero.
func (r AmenityRule) PointsAt(distanceMiles float64) float64 {
	for _, t := range r.Tiers {
		if distanceMiles <= t.MaxDistanceMiles {
			return t.Points
		}
	}
	return 0
}

// AmenityRules holds all category tables plus the published aggregate cap.
type AmenityRules struct {
	MaxTotal   float64                `yaml:"max_total" mapstructure:"max_total"`
	Categories map[string]AmenityRule `yaml:"categories" mapstructure:"categories"`
}

// CountTier maps a minimum count to points; the highest satisfied tier wins.
type CountTier struct {
	MinCount int     `yaml:"min_count" mapstructure:"min_count"`
	Points   float64 `yaml:"points" mapstructure:"points"`
}

// DensityBonus adds points when the site's residential density reaches the
// threshold, on top of the frequency-based transit score.
type DensityBonus struct {
	MinUnitsPerAcre float64 `yaml:"min_units_per_acre" mapstructure:"min_units_per_acre"`
	Points          float64 `yaml:"points" mapstructure:"points"`
}

// TransitRules holds the transit scoring thresholds.
type TransitRules struct {
	OuterRadiusMiles        float64      `yaml:"outer_radius_miles" mapstructure:"outer_radius_miles"`
	QualifyingRadiusMiles   float64      `yaml:"qualifying_radius_miles" mapstructure:"qualifying_radius_miles"`
	HighFrequencyMaxHeadway float64      `yaml:"high_frequency_max_headway" mapstructure:"high_frequency_max_headway"`
	MaxPoints               float64      `yaml:"max_points" mapstructure:"max_points"`
	CountTiers              []CountTier  `yaml:"count_tiers" mapstructure:"count_tiers"`
	HighFrequencyTiers      []CountTier  `yaml:"high_frequency_tiers" mapstructure:"high_frequency_tiers"`
	DensityBonus            DensityBonus `yaml:"density_bonus" mapstructure:"density_bonus"`
}

// CompetitionRules holds the temporal-proximity elimination thresholds.
type CompetitionRules struct {
	ShortRadiusMiles   float64  `yaml:"short_radius_miles" mapstructure:"short_radius_miles"`
	RecencyYears       int      `yaml:"recency_years" mapstructure:"recency_years"`
	LargeRadiusMiles   float64  `yaml:"large_radius_miles" mapstructure:"large_radius_miles"`
	LargeJurisdictions []string `yaml:"large_jurisdictions" mapstructure:"large_jurisdictions"`
}

// IsLargeJurisdiction reports whether a county name is on the large-metro
// allow-list. Matching is case-insensitive.
func (c CompetitionRules) IsLargeJurisdiction(county string) bool {
	county = strings.TrimSpace(strings.ToLower(county))
	for _, j := range c.LargeJurisdictions {
		if strings.ToLower(j) == county {
			return true
		}
	}
	return false
}

// OpportunityRules maps resource categories to competitive points.
type OpportunityRules struct {
	Points map[string]float64 `yaml:"points" mapstructure:"points"`
}

// FederalRules configures the basis-boost contribution to the numeric score.
type FederalRules struct {
	BasisBoostPoints float64 `yaml:"basis_boost_points" mapstructure:"basis_boost_points"`
}

// TierBands holds the lower bound of each recommendation band.
type TierBands struct {
	Exceptional   float64 `yaml:"exceptional" mapstructure:"exceptional"`
	HighPotential float64 `yaml:"high_potential" mapstructure:"high_potential"`
	Good          float64 `yaml:"good" mapstructure:"good"`
}

// Rules is one immutable versioned rule set for a state and program year.
type Rules struct {
	Version     string           `yaml:"version" mapstructure:"version"`
	Federal     FederalRules     `yaml:"federal" mapstructure:"federal"`
	Opportunity OpportunityRules `yaml:"opportunity" mapstructure:"opportunity"`
	Amenity     AmenityRules     `yaml:"amenity" mapstructure:"amenity"`
	Transit     TransitRules     `yaml:"transit" mapstructure:"transit"`
	Competition CompetitionRules `yaml:"competition" mapstructure:"competition"`
	Tiers       TierBands        `yaml:"tiers" mapstructure:"tiers"`
}

// RuleBook is a default rule set plus per-jurisdiction overrides, keyed
// "STATE/year" (e.g. "TX/2025"). New jurisdictions and years are additive.
type RuleBook struct {
	Default   Rules            `yaml:"default" mapstructure:"default"`
	Overrides map[string]Rules `yaml:"overrides" mapstructure:"overrides"`
}

// Resolve returns the rule set for a state and program year, falling back to
// the default set when no override is published.
func (rb *RuleBook) Resolve(state string, year int) Rules {
	if rb.Overrides != nil {
		key := fmt.Sprintf("%s/%d", strings.ToUpper(strings.TrimSpace(state)), year)
		if r, ok := rb.Overrides[key]; ok {
			return r
		}
	}
	return rb.Default
}

// DefaultRules returns the built-in rule tables. These are tuning defaults,
// not program authority; publish jurisdiction rules via a rules file.
func DefaultRules() Rules {
	return Rules{
		Version: "builtin-2025.1",
		// Eligibility is reported as a flag; jurisdictions that award
		// points for the basis boost publish them via overrides.
		Federal: FederalRules{BasisBoostPoints: 0},
		Opportunity: OpportunityRules{
			Points: map[string]float64{
				"highest":  20,
				"high":     15,
				"moderate": 10,
				"rising":   5,
			},
		},
		Amenity: AmenityRules{
			MaxTotal: 60,
			Categories: map[string]AmenityRule{
				CategoryGrocery: {
					MinSquareFeet: 20000, // full-scale grocery only
					Tiers: []AmenityTier{
						{MaxDistanceMiles: 0.25, Points: 15},
						{MaxDistanceMiles: 0.5, Points: 12},
						{MaxDistanceMiles: 1.0, Points: 8},
						{MaxDistanceMiles: 1.5, Points: 5},
					},
				},
				CategoryElementarySchool: {
					Tiers: []AmenityTier{
						{MaxDistanceMiles: 0.25, Points: 10},
						{MaxDistanceMiles: 0.75, Points: 7},
						{MaxDistanceMiles: 1.25, Points: 4},
					},
					SecondaryCredit: true,
					SecondaryFactor: 0.5,
				},
				CategoryHighSchool: {
					Tiers: []AmenityTier{
						{MaxDistanceMiles: 1.0, Points: 7},
						{MaxDistanceMiles: 1.5, Points: 4},
					},
					SecondaryCredit: true,
					SecondaryFactor: 0.5,
				},
				CategoryMedical: {
					Tiers: []AmenityTier{
						{MaxDistanceMiles: 0.5, Points: 10},
						{MaxDistanceMiles: 1.0, Points: 6},
					},
				},
				CategoryPharmacy: {
					Tiers: []AmenityTier{
						{MaxDistanceMiles: 0.5, Points: 6},
						{MaxDistanceMiles: 1.0, Points: 3},
					},
				},
				CategoryPark: {
					Tiers: []AmenityTier{
						{MaxDistanceMiles: 0.25, Points: 8},
						{MaxDistanceMiles: 0.5, Points: 5},
						{MaxDistanceMiles: 0.75, Points: 3},
					},
				},
			},
		},
		Transit: TransitRules{
			OuterRadiusMiles:        3.0,
			QualifyingRadiusMiles:   1.0 / 3.0,
			HighFrequencyMaxHeadway: 15,
			MaxPoints:               7,
			CountTiers: []CountTier{
				{MinCount: 1, Points: 3},
				{MinCount: 3, Points: 4},
				{MinCount: 5, Points: 5},
			},
			HighFrequencyTiers: []CountTier{
				{MinCount: 1, Points: 1},
				{MinCount: 3, Points: 2},
			},
			DensityBonus: DensityBonus{MinUnitsPerAcre: 25, Points: 2},
		},
		Competition: CompetitionRules{
			ShortRadiusMiles: 1.0,
			RecencyYears:     3,
			LargeRadiusMiles: 2.0,
			LargeJurisdictions: []string{
				"Harris", "Dallas", "Tarrant", "Bexar", "Travis",
			},
		},
		Tiers: TierBands{Exceptional: 75, HighPotential: 65, Good: 50},
	}
}

// DefaultRuleBook returns a rule book with only the built-in default set.
func DefaultRuleBook() *RuleBook {
	return &RuleBook{Default: DefaultRules()}
}

// LoadRuleBook reads a YAML rule file. An empty path returns the built-in
// defaults. Every rule set in the book is validated before use.
func LoadRuleBook(path string) (*RuleBook, error) {
	if path == "" {
		return DefaultRuleBook(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}

	var rb RuleBook
	if err := yaml.Unmarshal(raw, &rb); err != nil {
		return nil, eris.Wrapf(err, "rules: parse %s", path)
	}

	if err := ValidateRules(rb.Default); err != nil {
		return nil, eris.Wrap(err, "rules: default set")
	}
	for key, r := range rb.Overrides {
		if err := ValidateRules(r); err != nil {
			return nil, eris.Wrapf(err, "rules: override %s", key)
		}
	}
	return &rb, nil
}

// ValidateRules checks that a rule set is internally consistent.
func ValidateRules(r Rules) error {
	var errs []string

	if r.Federal.BasisBoostPoints < 0 {
		errs = append(errs, "federal.basis_boost_points must be >= 0")
	}

	for cat, pts := range r.Opportunity.Points {
		if pts < 0 {
			errs = append(errs, fmt.Sprintf("opportunity.points[%s] must be >= 0", cat))
		}
	}

	if r.Amenity.MaxTotal <= 0 {
		errs = append(errs, "amenity.max_total must be > 0")
	}
	for cat, rule := range r.Amenity.Categories {
		if len(rule.Tiers) == 0 {
			errs = append(errs, fmt.Sprintf("amenity.categories[%s] has no tiers", cat))
			continue
		}
		if !sort.SliceIsSorted(rule.Tiers, func(i, j int) bool {
			return rule.Tiers[i].MaxDistanceMiles < rule.Tiers[j].MaxDistanceMiles
		}) {
			errs = append(errs, fmt.Sprintf("amenity.categories[%s] tiers must be ordered by ascending distance", cat))
		}
		for i := 1; i < len(rule.Tiers); i++ {
			if rule.Tiers[i].Points > rule.Tiers[i-1].Points {
				errs = append(errs, fmt.Sprintf("amenity.categories[%s] points must be non-increasing with distance", cat))
				break
			}
		}
		for _, t := range rule.Tiers {
			if t.MaxDistanceMiles <= 0 || t.Points < 0 {
				errs = append(errs, fmt.Sprintf("amenity.categories[%s] has a malformed tier", cat))
				break
			}
		}
		if rule.SecondaryCredit && (rule.SecondaryFactor <= 0 || rule.SecondaryFactor >= 1) {
			errs = append(errs, fmt.Sprintf("amenity.categories[%s] secondary_factor must be in (0, 1)", cat))
		}
	}

	if r.Transit.OuterRadiusMiles <= 0 {
		errs = append(errs, "transit.outer_radius_miles must be > 0")
	}
	if r.Transit.QualifyingRadiusMiles <= 0 || r.Transit.QualifyingRadiusMiles > r.Transit.OuterRadiusMiles {
		errs = append(errs, "transit.qualifying_radius_miles must be > 0 and <= outer radius")
	}
	if r.Transit.HighFrequencyMaxHeadway <= 0 {
		errs = append(errs, "transit.high_frequency_max_headway must be > 0")
	}
	if r.Transit.MaxPoints <= 0 {
		errs = append(errs, "transit.max_points must be > 0")
	}
	for _, tiers := range [][]CountTier{r.Transit.CountTiers, r.Transit.HighFrequencyTiers} {
		for i := 1; i < len(tiers); i++ {
			if tiers[i].MinCount <= tiers[i-1].MinCount || tiers[i].Points < tiers[i-1].Points {
				errs = append(errs, "transit count tiers must ascend in both count and points")
				break
			}
		}
	}

	if r.Competition.ShortRadiusMiles <= 0 {
		errs = append(errs, "competition.short_radius_miles must be > 0")
	}
	if r.Competition.LargeRadiusMiles < r.Competition.ShortRadiusMiles {
		errs = append(errs, "competition.large_radius_miles must be >= short radius")
	}
	if r.Competition.RecencyYears < 0 {
		errs = append(errs, "competition.recency_years must be >= 0")
	}

	if !(r.Tiers.Exceptional > r.Tiers.HighPotential && r.Tiers.HighPotential > r.Tiers.Good && r.Tiers.Good > 0) {
		errs = append(errs, "tiers must descend: exceptional > high_potential > good > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("rules: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
