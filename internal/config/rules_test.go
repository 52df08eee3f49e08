package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValidate(t *testing.T) {
	require.NoError(t, ValidateRules(DefaultRules()))
}

func TestAmenityRulePointsAt(t *testing.T) {
	rule := AmenityRule{Tiers: []AmenityTier{
		{MaxDistanceMiles: 0.25, Points: 15},
		{MaxDistanceMiles: 0.5, Points: 12},
		{MaxDistanceMiles: 1.0, Points: 8},
	}}

	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"innermost tier", 0.1, 15},
		{"tier boundary is inclusive", 0.25, 15},
		{"middle tier", 0.4, 12},
		{"outer tier", 0.99, 8},
		{"outer boundary", 1.0, 8},
		{"beyond max radius", 1.01, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.PointsAt(tt.distance))
		})
	}

	assert.Equal(t, 1.0, rule.MaxRadiusMiles())
}

func TestValidateRules_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
		want   string
	}{
		{
			"non-monotonic amenity tiers",
			func(r *Rules) {
				r.Amenity.Categories["grocery"] = AmenityRule{Tiers: []AmenityTier{
					{MaxDistanceMiles: 0.25, Points: 5},
					{MaxDistanceMiles: 0.5, Points: 9},
				}}
			},
			"non-increasing",
		},
		{
			"unordered amenity tiers",
			func(r *Rules) {
				r.Amenity.Categories["park"] = AmenityRule{Tiers: []AmenityTier{
					{MaxDistanceMiles: 0.5, Points: 5},
					{MaxDistanceMiles: 0.25, Points: 5},
				}}
			},
			"ascending distance",
		},
		{
			"qualifying radius beyond outer",
			func(r *Rules) { r.Transit.QualifyingRadiusMiles = 5 },
			"qualifying_radius_miles",
		},
		{
			"large radius below short radius",
			func(r *Rules) { r.Competition.LargeRadiusMiles = 0.5 },
			"large_radius_miles",
		},
		{
			"inverted tier bands",
			func(r *Rules) { r.Tiers.Good = 90 },
			"tiers must descend",
		},
		{
			"secondary factor out of range",
			func(r *Rules) {
				rule := r.Amenity.Categories["elementary_school"]
				rule.SecondaryFactor = 1.5
				r.Amenity.Categories["elementary_school"] = rule
			},
			"secondary_factor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			err := ValidateRules(r)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRuleBookResolve(t *testing.T) {
	rb := DefaultRuleBook()
	override := DefaultRules()
	override.Version = "TX-2025.2"
	override.Federal.BasisBoostPoints = 3
	rb.Overrides = map[string]Rules{"TX/2025": override}

	got := rb.Resolve("tx", 2025)
	assert.Equal(t, "TX-2025.2", got.Version)
	assert.Equal(t, 3.0, got.Federal.BasisBoostPoints)

	// Unknown state/year falls back to the default set.
	fallback := rb.Resolve("CA", 2025)
	assert.Equal(t, DefaultRules().Version, fallback.Version)

	fallback = rb.Resolve("TX", 2024)
	assert.Equal(t, DefaultRules().Version, fallback.Version)
}

func TestLoadRuleBook(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		rb, err := LoadRuleBook("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRules().Version, rb.Default.Version)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadRuleBook("/nonexistent/rules.yaml")
		require.Error(t, err)
	})

	t.Run("valid file with override", func(t *testing.T) {
		const doc = `
default:
  version: test-1
  federal:
    basis_boost_points: 5
  opportunity:
    points:
      highest: 20
  amenity:
    max_total: 60
    categories:
      grocery:
        tiers:
          - max_distance_miles: 0.5
            points: 10
  transit:
    outer_radius_miles: 3
    qualifying_radius_miles: 0.34
    high_frequency_max_headway: 15
    max_points: 7
    count_tiers:
      - min_count: 1
        points: 3
  competition:
    short_radius_miles: 1
    recency_years: 3
    large_radius_miles: 2
  tiers:
    exceptional: 75
    high_potential: 65
    good: 50
overrides:
  TX/2026:
    version: tx-2026
    federal:
      basis_boost_points: 4
    amenity:
      max_total: 55
      categories:
        grocery:
          tiers:
            - max_distance_miles: 0.5
              points: 10
    transit:
      outer_radius_miles: 3
      qualifying_radius_miles: 0.34
      high_frequency_max_headway: 15
      max_points: 7
    competition:
      short_radius_miles: 1
      recency_years: 3
      large_radius_miles: 2
    tiers:
      exceptional: 75
      high_potential: 65
      good: 50
`
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		rb, err := LoadRuleBook(path)
		require.NoError(t, err)
		assert.Equal(t, "test-1", rb.Default.Version)
		assert.Equal(t, "tx-2026", rb.Resolve("TX", 2026).Version)
		assert.Equal(t, 4.0, rb.Resolve("TX", 2026).Federal.BasisBoostPoints)
	})

	t.Run("invalid override rejected", func(t *testing.T) {
		const doc = `
default:
  version: test-1
  amenity:
    max_total: 60
    categories:
      grocery:
        tiers:
          - max_distance_miles: 0.5
            points: 10
  transit:
    outer_radius_miles: 3
    qualifying_radius_miles: 0.34
    high_frequency_max_headway: 15
    max_points: 7
  competition:
    short_radius_miles: 1
    large_radius_miles: 2
  tiers:
    exceptional: 75
    high_potential: 65
    good: 50
overrides:
  TX/2026:
    amenity:
      max_total: -1
`
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		_, err := LoadRuleBook(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TX/2026")
	})
}

func TestIsLargeJurisdiction(t *testing.T) {
	c := CompetitionRules{LargeJurisdictions: []string{"Harris", "Dallas"}}
	assert.True(t, c.IsLargeJurisdiction("Harris"))
	assert.True(t, c.IsLargeJurisdiction("dallas"))
	assert.True(t, c.IsLargeJurisdiction("  DALLAS "))
	assert.False(t, c.IsLargeJurisdiction("Travis"))
	assert.False(t, c.IsLargeJurisdiction(""))
}
