package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBoundaries() []Boundary {
	return []Boundary{
		{Name: "Alpha", Rings: [][]Location{square(0, 10)}},
		{Name: "Beta", Rings: [][]Location{square(5, 15)}}, // overlaps Alpha on [5,10]
		{Name: "Gamma", Rings: [][]Location{square(-30, -20), square(40, 50)}},
	}
}

func testEvents() []Event {
	return []Event{
		NewEvent("a", Location{Lat: 2, Lon: 2}, 4.5, 10, AgePastDay, "M 4.5 - Alpha"),
		NewEvent("ab", Location{Lat: 7, Lon: 7}, 5.1, 80, AgePastWeek, "M 5.1 - overlap"),
		NewEvent("b", Location{Lat: 12, Lon: 12}, 3.2, 5, "", "M 3.2 - Beta"),
		NewEvent("ocean", Location{Lat: -60, Lon: 100}, 6.0, 400, AgePastHour, "M 6.0 - ocean"),
		NewEvent("g", Location{Lat: 45, Lon: 45}, 2.8, 1, "", "M 2.8 - Gamma island"),
	}
}

// orderedLocator returns every boundary index and counts lookups.
type orderedLocator struct {
	calls int
}

func (l *orderedLocator) Candidates(p Location) []int {
	l.calls++
	return []int{0, 1, 2}
}

func TestClassifier_Classify(t *testing.T) {
	events := testEvents()
	tags := NewTags(len(events))
	NewClassifier(testBoundaries(), nil).Classify(events, tags)

	assert.Equal(t, Classification{Country: "Alpha", OnLand: true}, tags.At(0))
	assert.Equal(t, Classification{Country: "Alpha", OnLand: true}, tags.At(1), "first listed boundary wins")
	assert.Equal(t, Classification{Country: "Beta", OnLand: true}, tags.At(2))
	assert.Equal(t, Classification{}, tags.At(3), "ocean stays untagged")
	assert.Equal(t, Classification{Country: "Gamma", OnLand: true}, tags.At(4), "any ring qualifies")
}

func TestClassifier_OrderDependence(t *testing.T) {
	b := testBoundaries()
	reversed := []Boundary{b[1], b[0]}
	events := []Event{NewEvent("p", Location{Lat: 7, Lon: 7}, 3, 0, "", "M 3.0 - P")}

	tags := NewTags(1)
	NewClassifier(reversed, nil).Classify(events, tags)
	assert.Equal(t, "Beta", tags.At(0).Country)
}

func TestClassifier_Idempotent(t *testing.T) {
	events := testEvents()
	c := NewClassifier(testBoundaries(), nil)

	once := NewTags(len(events))
	c.Classify(events, once)

	twice := NewTags(len(events))
	c.Classify(events, twice)
	c.Classify(events, twice)

	assert.Equal(t, once, twice)
}

func TestClassifier_PreservesExistingTags(t *testing.T) {
	events := testEvents()
	tags := NewTags(len(events))
	tags.Set(0, "Preset")

	NewClassifier(testBoundaries(), nil).Classify(events, tags)
	assert.Equal(t, "Preset", tags.At(0).Country)
}

func TestClassifier_WithLocator(t *testing.T) {
	events := testEvents()
	loc := &orderedLocator{}

	withLocator := NewTags(len(events))
	NewClassifier(testBoundaries(), loc).Classify(events, withLocator)

	linear := NewTags(len(events))
	NewClassifier(testBoundaries(), nil).Classify(events, linear)

	assert.Equal(t, linear, withLocator)
	assert.Equal(t, len(events), loc.calls)
}

func TestClassifier_Locate(t *testing.T) {
	c := NewClassifier(testBoundaries(), nil)

	name, ok := c.Locate(Location{Lat: 1, Lon: 1})
	assert.True(t, ok)
	assert.Equal(t, "Alpha", name)

	_, ok = c.Locate(Location{Lat: 80, Lon: 80})
	assert.False(t, ok)

	assert.Len(t, c.Boundaries(), 3)
}

func TestClassifier_MismatchedTagsPanics(t *testing.T) {
	c := NewClassifier(testBoundaries(), nil)
	assert.Panics(t, func() { c.Classify(testEvents(), NewTags(1)) })
}

func TestTags_Set(t *testing.T) {
	tags := NewTags(2)
	assert.False(t, tags.IsSet(0))

	tags.Set(0, "Alpha")
	assert.True(t, tags.IsSet(0))
	assert.False(t, tags.IsSet(1))

	assert.NotPanics(t, func() { tags.Set(0, "Alpha") })
	assert.PanicsWithValue(t, `domain: event 0 already tagged "Alpha", refusing "Beta"`, func() {
		tags.Set(0, "Beta")
	})
	assert.Equal(t, "Alpha", tags.At(0).Country)
}

func TestJoin(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	events := testEvents()
	tags := NewTags(len(events))
	NewClassifier(testBoundaries(), nil).Classify(events, tags)

	joined := Join(events, tags)
	require.Len(t, joined, len(events))

	assert.Equal(t, events[1], joined[1].Event)
	assert.Equal(t, "Alpha", joined[1].Country)
	assert.True(t, joined[1].OnLand)
	assert.Equal(t, Intermediate, joined[1].DepthTier)
	assert.Equal(t, fixed, joined[1].ClassifiedAt)

	assert.False(t, joined[3].OnLand)
	assert.Equal(t, Deep, joined[3].DepthTier)
}
