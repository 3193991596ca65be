package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map/internal/adapter/source"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/couchcryptid/quake-map/internal/selection"
	"github.com/couchcryptid/quake-map/internal/spatial"
)

func mockPath(name string) string {
	return filepath.Join("..", "..", "data", "mock", name)
}

func loadMockGeography(t *testing.T) pipeline.Geography {
	t.Helper()

	data, err := os.ReadFile(mockPath("countries.geo.json"))
	require.NoError(t, err)
	boundaries, err := feed.ParseBoundaries(data)
	require.NoError(t, err)

	data, err = os.ReadFile(mockPath("city-data.json"))
	require.NoError(t, err)
	cities, err := feed.ParseCities(data)
	require.NoError(t, err)

	return pipeline.Geography{
		Boundaries: boundaries,
		Cities:     cities,
		Locator:    spatial.NewIndex(boundaries),
	}
}

func TestPipeline_WithMockData(t *testing.T) {
	geo := loadMockGeography(t)
	require.Len(t, geo.Boundaries, 4, "line features are not boundaries")
	require.Len(t, geo.Cities, 6)

	src := source.FileSource{Path: mockPath("quakes_week.atom")}
	p := pipeline.New(src, geo, nil, selection.RadiusHitTester{RadiusKm: 25}, discardLogger(), newTestMetrics(), 0)
	require.NoError(t, p.Refresh(context.Background()))

	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 9, snap.Entries)
	require.Len(t, snap.Skipped, 1)
	assert.Equal(t, feed.ReasonNoPoint, snap.Skipped[0].Reason)
	require.Len(t, snap.Events, 8)

	want := []struct {
		country string
		mag     float64
		depth   float64
		tier    domain.DepthTier
	}{
		{"Japan", 6.1, 35, domain.Shallow},
		{"Chile", 5.4, 110, domain.Intermediate},
		{"Indonesia", 4.7, 42.3, domain.Shallow},
		{"Indonesia", 5.9, 650, domain.Deep},
		{"Turkey", 4.2, 7, domain.Shallow},
		{"", 6.6, 540, domain.Deep},
		{"", 2.9, 10, domain.Shallow},
		{"", 7.0, 25.5, domain.Shallow},
	}
	for i, w := range want {
		ev := snap.Events[i]
		assert.Equal(t, w.country, ev.Country, "event %d", i)
		assert.Equal(t, w.country != "", ev.OnLand, "event %d", i)
		assert.InDelta(t, w.mag, ev.Magnitude, 1e-9, "event %d", i)
		assert.InDelta(t, w.depth, ev.Depth, 1e-9, "event %d", i)
		assert.Equal(t, w.tier, ev.DepthTier, "event %d", i)
	}

	assert.Equal(t, []string{
		"Japan: 1 earthquake(s)",
		"Chile: 1 earthquake(s)",
		"Indonesia: 2 earthquake(s)",
		"Turkey: 1 earthquake(s)",
		"OCEAN QUAKES: 3 earthquake(s)",
	}, snap.Report.Lines(p.Boundaries()))
}

func TestPipeline_MockDataSession(t *testing.T) {
	geo := loadMockGeography(t)
	src := source.FileSource{Path: mockPath("quakes_week.atom")}
	p := pipeline.New(src, geo, nil, selection.RadiusHitTester{RadiusKm: 25}, discardLogger(), newTestMetrics(), 0)
	require.NoError(t, p.Refresh(context.Background()))

	session := p.Session()
	// Lock the Honshu quake: Sendai and Tokyo are inside its threat circle
	// (~1500 km at M6.1), the other cities are not.
	session.PointerClick(selection.PointerAt(domain.Location{Lat: 38.3, Lon: 142.0}))

	ref, ok := session.Lock()
	require.True(t, ok)
	assert.Equal(t, selection.MarkerRef{Kind: selection.KindEvent, Index: 0}, ref)

	visible := map[string]bool{}
	for i, c := range geo.Cities {
		visible[c.Name] = !session.CityState(i).Hidden
	}
	assert.Equal(t, map[string]bool{
		"Tokyo":     true,
		"Sendai":    true,
		"Santiago":  false,
		"Jakarta":   false,
		"Istanbul":  false,
		"Reykjavik": false,
	}, visible)
}
