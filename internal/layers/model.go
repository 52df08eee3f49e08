// Package layers loads and indexes the static reference layers a batch run
// scores against: designated-area polygons, the opportunity-area table,
// amenity and transit point layers, and the competing-project registry. All
// layers are read-only after construction and safe for unlimited concurrent
// readers.
package layers

import (
	"github.com/twpayne/go-geom"

	"github.com/parcelworks/sitescreen/internal/geometry"
	"github.com/parcelworks/sitescreen/internal/model"
)

// Layer identifies one of the two independent federal designated-area layers.
type Layer string

const (
	LayerQCT Layer = "qct"
	LayerDDA Layer = "dda"
)

// DesignatedArea is a named polygon in one federal layer. A site may qualify
// under both layers simultaneously.
type DesignatedArea struct {
	Name     string
	Layer    Layer
	Geometry *geom.MultiPolygon
}

// OpportunityRecord maps one census tract to its state-assigned resource
// category for a program year. Points may be published per record; zero means
// the category table in the rule set supplies the value.
type OpportunityRecord struct {
	Tract    string  `json:"tract"`
	State    string  `json:"state"`
	Year     int     `json:"year"`
	Category string  `json:"category"`
	Points   float64 `json:"points,omitempty"`
}

// AmenityPoint is one categorized amenity location. SquareFeet is an optional
// qualifying attribute (zero when unknown) used by size-thresholded
// categories such as full-scale grocery.
type AmenityPoint struct {
	Category   string         `json:"category"`
	Name       string         `json:"name"`
	Location   geometry.Point `json:"location"`
	SquareFeet int            `json:"square_feet,omitempty"`
}

// TransitStop is one transit stop. PeakHeadwayMinutes is nil when no service
// frequency has been validated for the stop; such stops are treated as
// low-frequency.
type TransitStop struct {
	Name               string         `json:"name"`
	Agency             string         `json:"agency"`
	Location           geometry.Point `json:"location"`
	PeakHeadwayMinutes *float64       `json:"peak_headway_minutes,omitempty"`
}

// CompetingProject is one previously awarded development in the registry.
// The registry is the sole source of truth for competition rules; entries are
// never mutated or removed by the engine.
type CompetingProject struct {
	Name      string         `json:"name"`
	Location  geometry.Point `json:"location"`
	AwardYear int            `json:"award_year"`
	Program   model.Program  `json:"program"`
}

// AmenityHit is an amenity point plus its distance from the query point.
type AmenityHit struct {
	AmenityPoint
	DistanceMiles float64
}

// TransitHit is a transit stop plus its distance from the query point.
type TransitHit struct {
	TransitStop
	DistanceMiles float64
}

// ProjectHit is a competing project plus its distance from the query point.
type ProjectHit struct {
	CompetingProject
	DistanceMiles float64
}
