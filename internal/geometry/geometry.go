// Package geometry provides the geodesic distance and containment primitives
// shared by every reference-layer query and scoring rule.
package geometry

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3958.7613

// ErrInvalidCoordinate indicates a latitude outside [-90, 90] or a longitude
// outside [-180, 180]. Callers wrap it with the offending field name.
var ErrInvalidCoordinate = eris.New("geometry: invalid coordinate")

// Point is an immutable WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point lies within valid WGS84 bounds.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return eris.Wrapf(ErrInvalidCoordinate, "latitude %v", p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return eris.Wrapf(ErrInvalidCoordinate, "longitude %v", p.Lon)
	}
	return nil
}

// Distance returns the haversine great-circle distance between two points in
// miles. Accurate to well under 0.01 mile at county scale.
func Distance(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon

	return 2 * EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h))), nil
}

// PolygonContains reports whether the point lies inside the polygon. The
// boundary is inclusive: a point exactly on any ring (outer or hole) is
// contained. Points strictly inside a hole are not contained.
func PolygonContains(p *geom.Polygon, pt Point) bool {
	if p == nil || p.NumLinearRings() == 0 {
		return false
	}

	inside, onEdge := ringContains(p.LinearRing(0), pt)
	if onEdge {
		return true
	}
	if !inside {
		return false
	}

	// Interior rings are holes. On a hole boundary counts as contained.
	for i := 1; i < p.NumLinearRings(); i++ {
		holeInside, holeEdge := ringContains(p.LinearRing(i), pt)
		if holeEdge {
			return true
		}
		if holeInside {
			return false
		}
	}
	return true
}

// MultiPolygonContains reports inclusive containment over any member polygon.
func MultiPolygonContains(mp *geom.MultiPolygon, pt Point) bool {
	if mp == nil {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if PolygonContains(mp.Polygon(i), pt) {
			return true
		}
	}
	return false
}

// ringContains runs a ray cast against one linear ring. It returns whether the
// point is strictly inside, and separately whether it lies on the ring itself.
func ringContains(ring *geom.LinearRing, pt Point) (inside, onEdge bool) {
	coords := ring.FlatCoords()
	stride := ring.Stride()
	n := len(coords) / stride
	if n < 3 {
		return false, false
	}

	x, y := pt.Lon, pt.Lat
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := coords[i*stride], coords[i*stride+1]
		xj, yj := coords[j*stride], coords[j*stride+1]

		if onSegment(xi, yi, xj, yj, x, y) {
			return false, true
		}

		// Ray cast eastward: count edge crossings.
		if (yi > y) != (yj > y) {
			cross := (xj-xi)*(y-yi)/(yj-yi) + xi
			if x < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside, false
}

// onSegment reports whether (x, y) lies on the segment (x1,y1)-(x2,y2),
// endpoints included.
func onSegment(x1, y1, x2, y2, x, y float64) bool {
	const eps = 1e-12

	cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
	if math.Abs(cross) > eps {
		return false
	}
	if x < math.Min(x1, x2)-eps || x > math.Max(x1, x2)+eps {
		return false
	}
	if y < math.Min(y1, y2)-eps || y > math.Max(y1, y2)+eps {
		return false
	}
	return true
}
