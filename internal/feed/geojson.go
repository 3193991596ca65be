package feed

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/quake-map/internal/domain"
)

const nameProperty = "name"

// ParseBoundaries reads named country outlines from a GeoJSON
// FeatureCollection, preserving feature order. A Polygon contributes its
// outer ring and a MultiPolygon contributes the outer ring of each part.
// Features with any other geometry are ignored.
func ParseBoundaries(raw []byte) ([]domain.Boundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode boundary geojson: %w", err)
	}

	boundaries := make([]domain.Boundary, 0, len(fc.Features))
	for _, f := range fc.Features {
		var rings [][]domain.Location
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			rings = outerRings(g)
		case orb.MultiPolygon:
			for _, poly := range g {
				rings = append(rings, outerRings(poly)...)
			}
		default:
			continue
		}
		boundaries = append(boundaries, domain.Boundary{
			Name:  stringProperty(f.Properties, nameProperty),
			Rings: rings,
		})
	}
	return boundaries, nil
}

// ParseCities reads Point features from a GeoJSON FeatureCollection in
// feature order. Each city keeps a copy of all feature properties.
func ParseCities(raw []byte) ([]domain.City, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode city geojson: %w", err)
	}

	cities := make([]domain.City, 0, len(fc.Features))
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		cities = append(cities, domain.City{
			Name:       stringProperty(f.Properties, nameProperty),
			Location:   domain.LocationOf(p),
			Properties: f.Properties.Clone(),
		})
	}
	return cities, nil
}

func outerRings(poly orb.Polygon) [][]domain.Location {
	if len(poly) == 0 {
		return nil
	}
	outer := poly[0]
	ring := make([]domain.Location, len(outer))
	for i, p := range outer {
		ring[i] = domain.LocationOf(p)
	}
	return [][]domain.Location{ring}
}

func stringProperty(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}
