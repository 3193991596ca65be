package selection

import "github.com/couchcryptid/quake-map/internal/domain"

// Pointer is a pointer position as reported by the host. Its coordinate
// space belongs to the HitTester.
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is what a HitTester sees of an event or city.
type Marker struct {
	Ref      MarkerRef
	Location domain.Location
	Radius   float64 // drawing radius; zero for cities
}

// HitTester decides whether a pointer position falls on a marker. Rendering
// layers implement it in screen space.
type HitTester interface {
	Hit(p Pointer, m Marker) bool
}

// HitFunc adapts a function to HitTester.
type HitFunc func(p Pointer, m Marker) bool

func (f HitFunc) Hit(p Pointer, m Marker) bool {
	return f(p, m)
}

// RadiusHitTester is the headless hit-test: the pointer is a geographic
// position (X is longitude, Y is latitude) and hits any marker within
// RadiusKm great-circle kilometers.
type RadiusHitTester struct {
	RadiusKm float64
}

// PointerAt builds a Pointer for a geographic position.
func PointerAt(loc domain.Location) Pointer {
	return Pointer{X: loc.Lon, Y: loc.Lat}
}

func (h RadiusHitTester) Hit(p Pointer, m Marker) bool {
	return domain.DistanceKm(domain.Location{Lat: p.Y, Lon: p.X}, m.Location) <= h.RadiusKm
}
