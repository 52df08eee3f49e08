package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/sitescreen/internal/geometry"
)

func validSite() Site {
	return Site{
		ID:          "site-001",
		Latitude:    30.25,
		Longitude:   -97.75,
		State:       "TX",
		ProgramYear: 2025,
	}
}

func TestValidateSite(t *testing.T) {
	require.NoError(t, ValidateSite(validSite()))

	tests := []struct {
		name   string
		mutate func(*Site)
	}{
		{"missing id", func(s *Site) { s.ID = "" }},
		{"latitude out of range", func(s *Site) { s.Latitude = 90.5 }},
		{"longitude out of range", func(s *Site) { s.Longitude = -181 }},
		{"missing state", func(s *Site) { s.State = "" }},
		{"state not a code", func(s *Site) { s.State = "Texas" }},
		{"program year too early", func(s *Site) { s.ProgramYear = 1950 }},
		{"bad population class", func(s *Site) { s.PopulationClass = "huge" }},
		{"non-positive density", func(s *Site) { d := 0.0; s.ResidentialDensity = &d }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := validSite()
			tt.mutate(&site)
			assert.Error(t, ValidateSite(site))
		})
	}
}

func TestValidateSite_CoordinateSentinel(t *testing.T) {
	site := validSite()
	site.Latitude = 95
	err := ValidateSite(site)
	require.ErrorIs(t, err, geometry.ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), "site-001")
}

func TestSitePoint(t *testing.T) {
	site := validSite()
	assert.Equal(t, geometry.Point{Lat: 30.25, Lon: -97.75}, site.Point())
}
