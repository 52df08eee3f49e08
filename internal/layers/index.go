package layers

import (
	"math"
	"sort"

	"github.com/parcelworks/sitescreen/internal/geometry"
)

// indexCellDegrees is the grid cell size of the point index. Roughly 3.5
// miles of latitude per cell, a good fit for the sub-3-mile query radii the
// scoring rules use.
const indexCellDegrees = 0.05

// milesPerDegreeLat is the latitude degree length used only to size the cell
// scan window; exact distances come from the haversine formula.
const milesPerDegreeLat = 69.09

// gridIndex is a cell-bucketed point index supporting ordered radius queries.
// It is built once at load time and read-only afterwards.
type gridIndex struct {
	cellDeg float64
	cells   map[[2]int][]int
	points  []geometry.Point
}

// indexMatch is one radius-query result, ordered by ascending distance.
type indexMatch struct {
	Index         int
	DistanceMiles float64
}

func newGridIndex(points []geometry.Point) *gridIndex {
	g := &gridIndex{
		cellDeg: indexCellDegrees,
		cells:   make(map[[2]int][]int),
		points:  points,
	}
	for i, p := range points {
		key := g.cellKey(p)
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

func (g *gridIndex) cellKey(p geometry.Point) [2]int {
	return [2]int{
		int(math.Floor(p.Lat / g.cellDeg)),
		int(math.Floor(p.Lon / g.cellDeg)),
	}
}

// withinRadius returns the indexes of all points within radiusMiles of
// center, ordered by ascending distance with index as the deterministic tie
// break.
func (g *gridIndex) withinRadius(center geometry.Point, radiusMiles float64) []indexMatch {
	if radiusMiles <= 0 || len(g.points) == 0 {
		return nil
	}

	latDelta := radiusMiles / milesPerDegreeLat
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	lonDelta := latDelta
	if cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	} else {
		// Near the poles the scan window degenerates; fall back to a full
		// longitude sweep for correctness.
		lonDelta = 180
	}

	minKey := g.cellKey(geometry.Point{Lat: center.Lat - latDelta, Lon: center.Lon - lonDelta})
	maxKey := g.cellKey(geometry.Point{Lat: center.Lat + latDelta, Lon: center.Lon + lonDelta})

	var matches []indexMatch
	for latCell := minKey[0]; latCell <= maxKey[0]; latCell++ {
		for lonCell := minKey[1]; lonCell <= maxKey[1]; lonCell++ {
			for _, idx := range g.cells[[2]int{latCell, lonCell}] {
				d, err := geometry.Distance(center, g.points[idx])
				if err != nil {
					continue
				}
				if d <= radiusMiles {
					matches = append(matches, indexMatch{Index: idx, DistanceMiles: d})
				}
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceMiles != matches[j].DistanceMiles {
			return matches[i].DistanceMiles < matches[j].DistanceMiles
		}
		return matches[i].Index < matches[j].Index
	})
	return matches
}
