package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// minRingVertices is the smallest ring that can enclose area.
const minRingVertices = 3

// Contains reports whether p lies inside any of b's rings. Rings are
// independent alternatives, so an archipelago needs no connected outline.
// Rings with fewer than three vertices never match.
func Contains(b Boundary, p Location) bool {
	for _, ring := range b.Rings {
		if ringContains(ring, p) {
			return true
		}
	}
	return false
}

// ringContains is a crossing-number test: cast a horizontal ray from p and
// count the ring edges it crosses. An odd count means inside. The ring is
// treated as closed whether or not the last vertex repeats the first.
func ringContains(ring []Location, p Location) bool {
	n := len(ring)
	if n < minRingVertices {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := ring[i].Lat, ring[i].Lon
		yj, xj := ring[j].Lat, ring[j].Lon

		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lon < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// DistanceKm is the great-circle (haversine) distance between two locations.
func DistanceKm(a, b Location) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point()) / 1000
}

// Point converts the location to an orb point, which is ordered [lon, lat].
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// LocationOf converts an orb point back to a Location.
func LocationOf(p orb.Point) Location {
	return Location{Lat: p.Lat(), Lon: p.Lon()}
}
