package screening

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/geometry"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
)

// squareArea builds a designated area covering a half-degree square centered
// on (lat, lon).
func squareArea(t *testing.T, name string, layer layers.Layer, lat, lon float64) layers.DesignatedArea {
	t.Helper()
	const half = 0.25
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		lon - half, lat - half,
		lon + half, lat - half,
		lon + half, lat + half,
		lon - half, lat + half,
		lon - half, lat - half,
	})))
	require.NoError(t, mp.Push(poly))
	return layers.DesignatedArea{Name: name, Layer: layer, Geometry: mp}
}

func headway(minutes float64) *float64 { return &minutes }

func density(unitsPerAcre float64) *float64 { return &unitsPerAcre }

// testStore builds a store around three clusters: a scoring cluster at
// (30.25, -97.75) with amenities and transit, a short-radius competition
// cluster at lon -97.60, and a large-radius competition cluster at lon
// -97.45. Each cluster is several miles from the others so tests see only
// their own layer entries.
func testStore(t *testing.T) *layers.Store {
	t.Helper()
	store, err := layers.NewStore(&layers.Snapshot{
		HasDesignated: true,
		DesignatedAreas: []layers.DesignatedArea{
			squareArea(t, "QCT 48453001100", layers.LayerQCT, 30.25, -97.75),
			squareArea(t, "DDA Austin MSA", layers.LayerDDA, 30.25, -97.75),
			squareArea(t, "QCT 48201310100", layers.LayerQCT, 29.75, -95.35),
		},
		HasOpportunity: true,
		Opportunity: []layers.OpportunityRecord{
			{Tract: "48453001100", State: "TX", Year: 2025, Category: "highest"},
			{Tract: "48453001100", State: "TX", Year: 2024, Category: "high"},
			{Tract: "48201310100", State: "TX", Year: 2025, Category: "moderate", Points: 9},
		},
		HasAmenities: true,
		Amenities: []layers.AmenityPoint{
			{Category: "grocery", Name: "Central Market", Location: geometry.Point{Lat: 30.253, Lon: -97.75}, SquareFeet: 60000},
			{Category: "grocery", Name: "Corner Mart", Location: geometry.Point{Lat: 30.2505, Lon: -97.75}, SquareFeet: 1800},
			{Category: "elementary_school", Name: "Maplewood Elementary", Location: geometry.Point{Lat: 30.252, Lon: -97.75}},
			{Category: "elementary_school", Name: "Bryker Woods Elementary", Location: geometry.Point{Lat: 30.256, Lon: -97.75}},
			{Category: "high_school", Name: "Austin High", Location: geometry.Point{Lat: 30.27, Lon: -97.75}},
			{Category: "pharmacy", Name: "Walgreens Lamar", Location: geometry.Point{Lat: 30.26, Lon: -97.75}},
			{Category: "park", Name: "Eastwoods Park", Location: geometry.Point{Lat: 30.247, Lon: -97.75}},
		},
		HasTransit: true,
		Transit: []layers.TransitStop{
			{Name: "5th/Lamar", Agency: "CapMetro", Location: geometry.Point{Lat: 30.2505, Lon: -97.75}, PeakHeadwayMinutes: headway(10)},
			{Name: "6th/Lamar", Agency: "CapMetro", Location: geometry.Point{Lat: 30.251, Lon: -97.75}, PeakHeadwayMinutes: headway(12)},
			{Name: "Enfield", Agency: "CapMetro", Location: geometry.Point{Lat: 30.252, Lon: -97.75}, PeakHeadwayMinutes: headway(20)},
			{Name: "Exposition", Agency: "CapMetro", Location: geometry.Point{Lat: 30.253, Lon: -97.75}},
			{Name: "Far Northside", Agency: "CapMetro", Location: geometry.Point{Lat: 30.32, Lon: -97.75}, PeakHeadwayMinutes: headway(5)},
		},
		HasProjects: true,
		Projects: []layers.CompetingProject{
			{Name: "Riverview Commons", Location: geometry.Point{Lat: 30.25, Lon: -97.60}, AwardYear: 2024, Program: model.Program9Pct},
			{Name: "Oak Hollow", Location: geometry.Point{Lat: 30.252, Lon: -97.60}, AwardYear: 2020, Program: model.Program9Pct},
			{Name: "Mueller Flats", Location: geometry.Point{Lat: 30.25, Lon: -97.45}, AwardYear: 2025, Program: model.Program9Pct},
		},
	})
	require.NoError(t, err)
	return store
}

// scoringSite sits inside both designated-area layers of the scoring cluster,
// far from every competing project.
func scoringSite() model.Site {
	return model.Site{
		ID:          "site-austin-01",
		Name:        "Lamar & 5th",
		Latitude:    30.25,
		Longitude:   -97.75,
		CensusTract: "48453001100",
		State:       "TX",
		County:      "Hays",
		ProgramYear: 2025,
	}
}

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	return NewOrchestrator(testStore(t), config.DefaultRuleBook(), nil)
}
