package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Age terms carried by the feed's "Age" category.
const (
	AgePastHour  = "Past Hour"
	AgePastDay   = "Past Day"
	AgePastWeek  = "Past Week"
	AgePastMonth = "Past Month"
)

// Location is a WGS-84 latitude/longitude pair in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Boundary is a named outline made of one or more closed rings. A country
// with islands has one ring per landmass.
type Boundary struct {
	Name  string       `json:"name"`
	Rings [][]Location `json:"rings"`
}

// Event is a parsed earthquake. It is never mutated after parsing;
// classification results live in a separate [Tags] ledger.
type Event struct {
	ID        string   `json:"id,omitempty"`
	Location  Location `json:"location"`
	Magnitude float64  `json:"magnitude"`
	Depth     float64  `json:"depth_km"` // always non-negative
	Age       string   `json:"age,omitempty"`
	Title     string   `json:"title"`
	Radius    float64  `json:"radius"` // 2 × magnitude, a drawing hint
}

// NewEvent builds an Event and derives its drawing radius.
func NewEvent(id string, loc Location, magnitude, depth float64, age, title string) Event {
	return Event{
		ID:        id,
		Location:  loc,
		Magnitude: magnitude,
		Depth:     depth,
		Age:       age,
		Title:     title,
		Radius:    2 * magnitude,
	}
}

// ThreatRadiusKm is the event's threat circle.
func (e Event) ThreatRadiusKm() float64 {
	return ThreatCircleKm(e.Magnitude)
}

// DepthTier buckets the event by depth.
func (e Event) DepthTier() DepthTier {
	return DepthTierOf(e.Depth)
}

// Recent reports whether the feed marks the event as within the past day.
func (e Event) Recent() bool {
	return e.Age == AgePastHour || e.Age == AgePastDay
}

// Key returns the feed ID, or a deterministic hash of location and title when
// the feed entry carried no ID. Stable keys make downstream upserts idempotent.
func (e Event) Key() string {
	if e.ID != "" {
		return e.ID
	}
	input := fmt.Sprintf("%.4f|%.4f|%s", e.Location.Lat, e.Location.Lon, e.Title)
	hash := sha256.Sum256([]byte(input))
	return "quake-" + hex.EncodeToString(hash[:8])
}

// City is a named point of interest from the city GeoJSON.
type City struct {
	Name       string         `json:"name"`
	Location   Location       `json:"location"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Property returns a string property, or "" when absent or not a string.
func (c City) Property(key string) string {
	s, _ := c.Properties[key].(string)
	return s
}

// Classification is the land/ocean outcome for one event.
type Classification struct {
	Country string `json:"country,omitempty"`
	OnLand  bool   `json:"on_land"`
}

// ClassifiedEvent joins an event with its classification.
type ClassifiedEvent struct {
	Event
	Classification
	DepthTier    DepthTier `json:"depth_tier"`
	ClassifiedAt time.Time `json:"classified_at"`
}
