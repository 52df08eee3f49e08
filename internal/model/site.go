// Package model holds the site input and scoring output types shared by the
// screening engine, the reference-layer store, and the CLI.
package model

import (
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/parcelworks/sitescreen/internal/geometry"
)

// PopulationClass categorizes the site's jurisdiction for competition rules.
type PopulationClass string

const (
	PopulationStandard PopulationClass = "standard"
	PopulationLarge    PopulationClass = "large"
)

// Site is one candidate parcel submitted for screening.
type Site struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name,omitempty"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
	CensusTract string  `json:"census_tract,omitempty"`
	State       string  `json:"state" validate:"required,len=2,alpha"`
	County      string  `json:"county,omitempty"`
	ProgramYear int     `json:"program_year" validate:"gte=1987"`

	// PopulationClass marks sites in large-population jurisdictions for the
	// wider competition radius. County membership in the configured
	// large-jurisdiction list has the same effect.
	PopulationClass PopulationClass `json:"population_class,omitempty" validate:"omitempty,oneof=standard large"`

	// ResidentialDensity is planned units per acre. Nil means not provided;
	// the transit density bonus is then skipped.
	ResidentialDensity *float64 `json:"residential_density,omitempty" validate:"omitempty,gt=0"`
}

// Point returns the site location as a geometry point.
func (s Site) Point() geometry.Point {
	return geometry.Point{Lat: s.Latitude, Lon: s.Longitude}
}

var siteValidator = validator.New()

// ValidateSite checks a site before scoring. Coordinate range failures carry
// the geometry.ErrInvalidCoordinate sentinel so callers can classify them.
func ValidateSite(s Site) error {
	if err := s.Point().Validate(); err != nil {
		return eris.Wrapf(err, "model: site %s", s.ID)
	}
	if err := siteValidator.Struct(s); err != nil {
		return eris.Wrapf(err, "model: site %s", s.ID)
	}
	return nil
}
