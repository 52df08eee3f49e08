package layers

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Snapshot file names within a snapshot directory. Each file holds entities
// already normalized by an external loader; original GIS and spreadsheet
// formats are never parsed here.
const (
	fileDesignatedAreas   = "designated_areas.json"
	fileOpportunityAreas  = "opportunity_areas.json"
	fileAmenities         = "amenities.json"
	fileTransitStops      = "transit_stops.json"
	fileCompetingProjects = "competing_projects.json"
)

// Snapshot is one versioned, static set of reference layers. Has* flags
// distinguish an absent layer from an empty one.
type Snapshot struct {
	DesignatedAreas []DesignatedArea
	HasDesignated   bool

	Opportunity    []OpportunityRecord
	HasOpportunity bool

	Amenities    []AmenityPoint
	HasAmenities bool

	Transit    []TransitStop
	HasTransit bool

	Projects    []CompetingProject
	HasProjects bool
}

// designatedAreaRecord is the on-disk shape of one designated area. The
// coordinate nesting follows GeoJSON MultiPolygon order: polygons, rings,
// then [lon, lat] positions.
type designatedAreaRecord struct {
	Name        string           `json:"name"`
	Layer       Layer            `json:"layer"`
	Coordinates [][][][2]float64 `json:"coordinates"`
}

// LoadSnapshot reads a snapshot directory. Missing files leave the matching
// layer unavailable; the store decides which layers are required. Registry
// entries with malformed coordinates are skipped and logged, never fatal.
func LoadSnapshot(dir string) (*Snapshot, error) {
	log := zap.L().With(zap.String("snapshot", dir))
	snap := &Snapshot{}

	var areaRecords []designatedAreaRecord
	ok, err := readLayerFile(dir, fileDesignatedAreas, &areaRecords)
	if err != nil {
		return nil, err
	}
	if ok {
		snap.HasDesignated = true
		for _, rec := range areaRecords {
			mp, buildErr := buildMultiPolygon(rec.Coordinates)
			if buildErr != nil {
				log.Warn("skipping malformed designated area",
					zap.String("name", rec.Name), zap.Error(buildErr))
				continue
			}
			snap.DesignatedAreas = append(snap.DesignatedAreas, DesignatedArea{
				Name:     rec.Name,
				Layer:    rec.Layer,
				Geometry: mp,
			})
		}
	}

	ok, err = readLayerFile(dir, fileOpportunityAreas, &snap.Opportunity)
	if err != nil {
		return nil, err
	}
	snap.HasOpportunity = ok

	var amenities []AmenityPoint
	ok, err = readLayerFile(dir, fileAmenities, &amenities)
	if err != nil {
		return nil, err
	}
	if ok {
		snap.HasAmenities = true
		for _, a := range amenities {
			if vErr := a.Location.Validate(); vErr != nil {
				log.Warn("skipping amenity with malformed coordinates",
					zap.String("name", a.Name), zap.Error(vErr))
				continue
			}
			snap.Amenities = append(snap.Amenities, a)
		}
	}

	var stops []TransitStop
	ok, err = readLayerFile(dir, fileTransitStops, &stops)
	if err != nil {
		return nil, err
	}
	if ok {
		snap.HasTransit = true
		for _, t := range stops {
			if vErr := t.Location.Validate(); vErr != nil {
				log.Warn("skipping transit stop with malformed coordinates",
					zap.String("name", t.Name), zap.Error(vErr))
				continue
			}
			snap.Transit = append(snap.Transit, t)
		}
	}

	var projects []CompetingProject
	ok, err = readLayerFile(dir, fileCompetingProjects, &projects)
	if err != nil {
		return nil, err
	}
	if ok {
		snap.HasProjects = true
		for _, p := range projects {
			if vErr := p.Location.Validate(); vErr != nil {
				log.Warn("skipping registry entry with malformed coordinates",
					zap.String("name", p.Name), zap.Error(vErr))
				continue
			}
			snap.Projects = append(snap.Projects, p)
		}
	}

	return snap, nil
}

// readLayerFile unmarshals one layer file into dest. Returns false when the
// file does not exist; a present-but-unparseable file is an error.
func readLayerFile(dir, name string, dest any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "layers: read %s", name)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, eris.Wrapf(err, "layers: parse %s", name)
	}
	return true, nil
}

// buildMultiPolygon assembles a go-geom multipolygon from GeoJSON-ordered
// coordinates.
func buildMultiPolygon(coords [][][][2]float64) (*geom.MultiPolygon, error) {
	if len(coords) == 0 {
		return nil, eris.New("layers: area has no polygons")
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, polyCoords := range coords {
		if len(polyCoords) == 0 {
			continue
		}
		poly := geom.NewPolygon(geom.XY)
		for _, ringCoords := range polyCoords {
			if len(ringCoords) < 4 {
				return nil, eris.New("layers: ring has fewer than 4 positions")
			}
			flat := make([]float64, 0, len(ringCoords)*2)
			for _, pos := range ringCoords {
				flat = append(flat, pos[0], pos[1])
			}
			if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
				return nil, eris.Wrap(err, "layers: push ring")
			}
		}
		if err := mp.Push(poly); err != nil {
			return nil, eris.Wrap(err, "layers: push polygon")
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, eris.New("layers: area has no valid polygons")
	}
	return mp, nil
}
