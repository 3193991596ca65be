package domain

import "fmt"

// CandidateLocator narrows the boundaries worth testing for a location,
// typically by bounding box. Implementations must return indices into the
// classifier's boundary list in ascending order so the first-match rule still
// follows load order.
type CandidateLocator interface {
	Candidates(p Location) []int
}

// Tags is a write-once ledger of classifications, one slot per event index.
// The zero slot means "ocean, not yet attributed".
type Tags struct {
	entries []Classification
}

// NewTags allocates a ledger for n events.
func NewTags(n int) *Tags {
	return &Tags{entries: make([]Classification, n)}
}

// Len returns the number of slots.
func (t *Tags) Len() int {
	return len(t.entries)
}

// At returns the classification recorded for event i.
func (t *Tags) At(i int) Classification {
	return t.entries[i]
}

// IsSet reports whether event i already carries a country tag.
func (t *Tags) IsSet(i int) bool {
	return t.entries[i].OnLand
}

// Set records that event i lies in country. Writing the same country again
// is a no-op. Writing a different one panics: tags are write-once and a
// conflicting write means the caller broke the first-match contract.
func (t *Tags) Set(i int, country string) {
	cur := t.entries[i]
	if cur.OnLand {
		if cur.Country != country {
			panic(fmt.Sprintf("domain: event %d already tagged %q, refusing %q", i, cur.Country, country))
		}
		return
	}
	t.entries[i] = Classification{Country: country, OnLand: true}
}

// Classifier tags events with the first boundary that contains them.
type Classifier struct {
	boundaries []Boundary
	locator    CandidateLocator
}

// NewClassifier creates a Classifier over boundaries in their given order.
// Pass a nil locator to test every boundary for every event.
func NewClassifier(boundaries []Boundary, locator CandidateLocator) *Classifier {
	return &Classifier{boundaries: boundaries, locator: locator}
}

// Boundaries returns the boundary list the classifier was built with.
func (c *Classifier) Boundaries() []Boundary {
	return c.boundaries
}

// Locate returns the name of the first boundary containing p.
func (c *Classifier) Locate(p Location) (string, bool) {
	if c.locator == nil {
		for i := range c.boundaries {
			if Contains(c.boundaries[i], p) {
				return c.boundaries[i].Name, true
			}
		}
		return "", false
	}
	for _, i := range c.locator.Candidates(p) {
		if Contains(c.boundaries[i], p) {
			return c.boundaries[i].Name, true
		}
	}
	return "", false
}

// Classify records a country tag in tags for every event that falls inside a
// boundary. Events already tagged are skipped, so classifying twice is the
// same as classifying once. Events outside every boundary are left untagged
// and read as ocean.
func (c *Classifier) Classify(events []Event, tags *Tags) {
	if tags.Len() != len(events) {
		panic(fmt.Sprintf("domain: tags sized for %d events, got %d", tags.Len(), len(events)))
	}
	for i := range events {
		if tags.IsSet(i) {
			continue
		}
		if name, ok := c.Locate(events[i].Location); ok {
			tags.Set(i, name)
		}
	}
}

// Join pairs each event with its classification and stamps the join time.
func Join(events []Event, tags *Tags) []ClassifiedEvent {
	now := clock.Now()
	out := make([]ClassifiedEvent, len(events))
	for i := range events {
		out[i] = ClassifiedEvent{
			Event:          events[i],
			Classification: tags.At(i),
			DepthTier:      events[i].DepthTier(),
			ClassifiedAt:   now,
		}
	}
	return out
}
