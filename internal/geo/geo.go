// Package geo provides great-circle distance math and radius filtering for
// proximity-based alert targeting.
package geo

import (
	"math"
	"sort"
)

// earthRadiusKm is the mean Earth radius used for haversine distances.
const earthRadiusKm = 6371

// Coord is a WGS84 latitude/longitude pair.
type Coord struct {
	Lat float64
	Lon float64
}

// Locatable is implemented by entities that may carry a coordinate.
// Entities without one return (Coord{}, false) and are skipped by radius
// targeting.
type Locatable interface {
	Location() (Coord, bool)
}

// DistanceKm calculates the great-circle distance between two points in
// kilometers using the haversine formula.
func DistanceKm(a, b Coord) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// FilterWithinRadius returns the candidates whose location is within
// radiusKm of origin. The boundary is inclusive (distance == radiusKm
// passes). Candidates without a location cannot be evaluated and are
// excluded; callers that want to *display* coordinate-less entities must
// not route them through this function.
//
// Output order follows input order. Callers that need nearest-first use
// SortByDistance.
func FilterWithinRadius[T Locatable](origin Coord, candidates []T, radiusKm float64) []T {
	matched := make([]T, 0, len(candidates))
	for _, c := range candidates {
		loc, ok := c.Location()
		if !ok {
			continue
		}
		if DistanceKm(origin, loc) <= radiusKm {
			matched = append(matched, c)
		}
	}
	return matched
}

// SortByDistance sorts candidates in place by ascending distance from
// origin. Candidates without a location sort last.
func SortByDistance[T Locatable](origin Coord, candidates []T) {
	sort.SliceStable(candidates, func(i, j int) bool {
		li, oki := candidates[i].Location()
		lj, okj := candidates[j].Location()
		if !oki {
			return false
		}
		if !okj {
			return true
		}
		return DistanceKm(origin, li) < DistanceKm(origin, lj)
	})
}
