// Package feed turns raw feed documents and reference geography into domain
// records. It performs no I/O: callers hand it bytes they already fetched.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// Skip reasons recorded for feed entries that produce no event.
const (
	ReasonNoPoint      = "no_point"
	ReasonBadMagnitude = "bad_magnitude"
	ReasonBadElevation = "bad_elevation"
)

const ageLabel = "Age"

var (
	// Titles look like "M 5.2 - 10 km SW of Somewhere".
	fixedMagnitude = regexp.MustCompile(`^\d\.\d$`)
	firstNumber    = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Skipped describes a feed entry that was dropped.
type Skipped struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Batch is the outcome of parsing one feed document.
type Batch struct {
	Entries int            // entries present in the document
	Events  []domain.Event // parsed events, in document order
	Skipped []Skipped
}

// SkipCounts tallies skipped entries by reason.
func (b Batch) SkipCounts() map[string]int {
	counts := make(map[string]int, len(b.Skipped))
	for _, s := range b.Skipped {
		counts[s.Reason]++
	}
	return counts
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      *string        `xml:"title"`
	Point      string         `xml:"point"`
	Elev       *string        `xml:"elev"`
	Categories []atomCategory `xml:"category"`
}

type atomCategory struct {
	Label string `xml:"label,attr"`
	Term  string `xml:"term,attr"`
}

// ParseEvents decodes an Atom feed with GeoRSS extensions. Entries without a
// usable point, magnitude or elevation are dropped and listed in
// Batch.Skipped; only a document that is not well-formed XML is an error.
func ParseEvents(raw []byte) (Batch, error) {
	var doc atomFeed
	if err := xml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return Batch{}, fmt.Errorf("decode atom feed: %w", err)
	}

	batch := Batch{
		Entries: len(doc.Entries),
		Events:  make([]domain.Event, 0, len(doc.Entries)),
	}
	for i := range doc.Entries {
		ev, reason := parseEntry(&doc.Entries[i])
		if reason != "" {
			batch.Skipped = append(batch.Skipped, Skipped{Index: i, ID: doc.Entries[i].ID, Reason: reason})
			continue
		}
		batch.Events = append(batch.Events, ev)
	}
	return batch, nil
}

func parseEntry(e *atomEntry) (domain.Event, string) {
	loc, ok := parsePoint(e.Point)
	if !ok {
		return domain.Event{}, ReasonNoPoint
	}

	if e.Title == nil {
		return domain.Event{}, ReasonBadMagnitude
	}
	title := strings.TrimSpace(*e.Title)
	mag, ok := parseMagnitude(title)
	if !ok {
		return domain.Event{}, ReasonBadMagnitude
	}

	if e.Elev == nil {
		return domain.Event{}, ReasonBadElevation
	}
	elev, err := strconv.ParseFloat(strings.TrimSpace(*e.Elev), 64)
	if err != nil || !finite(elev) {
		return domain.Event{}, ReasonBadElevation
	}

	return domain.NewEvent(strings.TrimSpace(e.ID), loc, mag, depthKm(elev), ageOf(e.Categories), title), ""
}

// parsePoint reads a GeoRSS "lat lon" pair.
func parsePoint(s string) (domain.Location, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return domain.Location{}, false
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || !finite(lat) {
		return domain.Location{}, false
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || !finite(lon) {
		return domain.Location{}, false
	}
	return domain.Location{Lat: lat, Lon: lon}, true
}

// parseMagnitude reads the magnitude from the fixed title offset used by the
// feed ("M 5.2 - ..."). Titles that don't follow that layout fall back to the
// first number in the title. Negative magnitudes are rejected.
func parseMagnitude(title string) (float64, bool) {
	if len(title) >= 5 && fixedMagnitude.MatchString(title[2:5]) {
		if m, err := strconv.ParseFloat(title[2:5], 64); err == nil {
			return m, true
		}
	}
	tok := firstNumber.FindString(title)
	if tok == "" {
		return 0, false
	}
	m, err := strconv.ParseFloat(tok, 64)
	if err != nil || !finite(m) || m < 0 {
		return 0, false
	}
	return m, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// depthKm truncates elevation/100 toward zero before scaling, so depth is
// quantized to 0.1 km, then drops the sign.
func depthKm(elev float64) float64 {
	return math.Abs(math.Trunc(elev/100) / 10)
}

func ageOf(categories []atomCategory) string {
	for _, c := range categories {
		if c.Label == ageLabel {
			return c.Term
		}
	}
	return ""
}
