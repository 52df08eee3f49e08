package layers

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/parcelworks/sitescreen/internal/geometry"
	"github.com/parcelworks/sitescreen/internal/model"
)

// ErrLayerMissing indicates a required reference layer could not be loaded.
// Construction fails before any site is processed.
var ErrLayerMissing = eris.New("layers: required reference layer missing")

// Availability reports which reference layers a store was built with.
// Scorers consult it to degrade to "data unavailable" instead of failing.
type Availability struct {
	DesignatedAreas   bool `json:"designated_areas"`
	OpportunityAreas  bool `json:"opportunity_areas"`
	Amenities         bool `json:"amenities"`
	Transit           bool `json:"transit"`
	CompetingProjects bool `json:"competing_projects"`
}

type oppKey struct {
	tract string
	state string
	year  int
}

type areaEntry struct {
	area   DesignatedArea
	bounds *geom.Bounds
}

// Store is the read-only reference-layer index for one batch run. All query
// methods are safe for concurrent use.
type Store struct {
	areas       []areaEntry
	opportunity map[oppKey]OpportunityRecord

	amenityPoints map[string][]AmenityPoint
	amenityIndex  map[string]*gridIndex

	transit      []TransitStop
	transitIndex *gridIndex

	projects     []CompetingProject
	projectIndex *gridIndex

	avail Availability
}

// NewStore builds the layer indexes from a loaded snapshot. The designated
// area and opportunity layers are required; the rest degrade via
// Availability.
func NewStore(snap *Snapshot) (*Store, error) {
	if snap == nil {
		return nil, eris.Wrap(ErrLayerMissing, "nil snapshot")
	}
	if !snap.HasDesignated {
		return nil, eris.Wrap(ErrLayerMissing, "designated_areas")
	}
	if !snap.HasOpportunity {
		return nil, eris.Wrap(ErrLayerMissing, "opportunity_areas")
	}

	s := &Store{
		opportunity:   make(map[oppKey]OpportunityRecord, len(snap.Opportunity)),
		amenityPoints: make(map[string][]AmenityPoint),
		amenityIndex:  make(map[string]*gridIndex),
		avail: Availability{
			DesignatedAreas:   true,
			OpportunityAreas:  true,
			Amenities:         snap.HasAmenities,
			Transit:           snap.HasTransit,
			CompetingProjects: snap.HasProjects,
		},
	}

	for _, area := range snap.DesignatedAreas {
		if area.Geometry == nil || area.Geometry.NumPolygons() == 0 {
			zap.L().Warn("layers: skipping designated area without geometry", zap.String("name", area.Name))
			continue
		}
		s.areas = append(s.areas, areaEntry{area: area, bounds: area.Geometry.Bounds()})
	}

	for _, rec := range snap.Opportunity {
		key := oppKey{
			tract: strings.TrimSpace(rec.Tract),
			state: strings.ToUpper(strings.TrimSpace(rec.State)),
			year:  rec.Year,
		}
		s.opportunity[key] = rec
	}

	if snap.HasAmenities {
		byCategory := make(map[string][]AmenityPoint)
		for _, a := range snap.Amenities {
			byCategory[a.Category] = append(byCategory[a.Category], a)
		}
		for cat, points := range byCategory {
			// Name-ordered so equidistant facilities resolve identically
			// across runs regardless of snapshot file order.
			sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
			s.amenityPoints[cat] = points
			s.amenityIndex[cat] = newGridIndex(locations(points, func(p AmenityPoint) geometry.Point { return p.Location }))
		}
	}

	if snap.HasTransit {
		stops := make([]TransitStop, len(snap.Transit))
		copy(stops, snap.Transit)
		sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })
		s.transit = stops
		s.transitIndex = newGridIndex(locations(stops, func(t TransitStop) geometry.Point { return t.Location }))
	}

	if snap.HasProjects {
		projects := make([]CompetingProject, len(snap.Projects))
		copy(projects, snap.Projects)
		sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
		s.projects = projects
		s.projectIndex = newGridIndex(locations(projects, func(p CompetingProject) geometry.Point { return p.Location }))
	}

	return s, nil
}

func locations[T any](items []T, loc func(T) geometry.Point) []geometry.Point {
	pts := make([]geometry.Point, len(items))
	for i, it := range items {
		pts[i] = loc(it)
	}
	return pts
}

// Availability reports which layers this store was built with.
func (s *Store) Availability() Availability {
	return s.avail
}

// Counts reports the number of entries per layer, for status output.
func (s *Store) Counts() map[string]int {
	amenities := 0
	for _, pts := range s.amenityPoints {
		amenities += len(pts)
	}
	return map[string]int{
		"designated_areas":   len(s.areas),
		"opportunity_areas":  len(s.opportunity),
		"amenities":          amenities,
		"transit_stops":      len(s.transit),
		"competing_projects": len(s.projects),
	}
}

// DesignatedAreaHits returns every designated-area polygon containing the
// point. Zero, one, or two matches: a site may qualify under both federal
// layers. Boundary points count as contained.
func (s *Store) DesignatedAreaHits(pt geometry.Point) []model.AreaMatch {
	var hits []model.AreaMatch
	for _, e := range s.areas {
		if !boundsContain(e.bounds, pt) {
			continue
		}
		if geometry.MultiPolygonContains(e.area.Geometry, pt) {
			hits = append(hits, model.AreaMatch{Layer: string(e.area.Layer), Name: e.area.Name})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Layer != hits[j].Layer {
			return hits[i].Layer < hits[j].Layer
		}
		return hits[i].Name < hits[j].Name
	})
	return hits
}

// OpportunityCategory returns the opportunity record for a tract, state, and
// program year, or nil when no record is published for that combination.
func (s *Store) OpportunityCategory(tract, state string, year int) *OpportunityRecord {
	rec, ok := s.opportunity[oppKey{
		tract: strings.TrimSpace(tract),
		state: strings.ToUpper(strings.TrimSpace(state)),
		year:  year,
	}]
	if !ok {
		return nil
	}
	return &rec
}

// AmenitiesWithin returns amenities of one category within the radius,
// ordered by ascending distance (name-ordered on exact ties). An unknown
// category or an absent layer yields an empty result, not an error.
func (s *Store) AmenitiesWithin(pt geometry.Point, category string, radiusMiles float64) []AmenityHit {
	idx, ok := s.amenityIndex[category]
	if !ok {
		return nil
	}
	points := s.amenityPoints[category]

	var hits []AmenityHit
	for _, m := range idx.withinRadius(pt, radiusMiles) {
		hits = append(hits, AmenityHit{AmenityPoint: points[m.Index], DistanceMiles: m.DistanceMiles})
	}
	return hits
}

// TransitStopsWithin returns transit stops within the radius, ordered by
// ascending distance.
func (s *Store) TransitStopsWithin(pt geometry.Point, radiusMiles float64) []TransitHit {
	if s.transitIndex == nil {
		return nil
	}

	var hits []TransitHit
	for _, m := range s.transitIndex.withinRadius(pt, radiusMiles) {
		hits = append(hits, TransitHit{TransitStop: s.transit[m.Index], DistanceMiles: m.DistanceMiles})
	}
	return hits
}

// CompetingProjectsWithin returns registry entries within the radius awarded
// in [yearFrom, yearTo], ordered by ascending distance.
func (s *Store) CompetingProjectsWithin(pt geometry.Point, radiusMiles float64, yearFrom, yearTo int) []ProjectHit {
	if s.projectIndex == nil {
		return nil
	}

	var hits []ProjectHit
	for _, m := range s.projectIndex.withinRadius(pt, radiusMiles) {
		p := s.projects[m.Index]
		if p.AwardYear < yearFrom || p.AwardYear > yearTo {
			continue
		}
		hits = append(hits, ProjectHit{CompetingProject: p, DistanceMiles: m.DistanceMiles})
	}
	return hits
}

func boundsContain(b *geom.Bounds, pt geometry.Point) bool {
	return pt.Lon >= b.Min(0) && pt.Lon <= b.Max(0) &&
		pt.Lat >= b.Min(1) && pt.Lat <= b.Max(1)
}
