// Package selection is the hover and click-lock model over event and city
// markers. A locked marker hides everything outside its proximity filter
// until the next click clears the lock.
package selection

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// Kind identifies which marker collection a MarkerRef points into.
type Kind int

const (
	KindEvent Kind = iota
	KindCity
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindCity:
		return "city"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "event":
		*k = KindEvent
	case "city":
		*k = KindCity
	default:
		return fmt.Errorf("unknown marker kind %q", text)
	}
	return nil
}

// MarkerRef points at one marker.
type MarkerRef struct {
	Kind  Kind `json:"kind"`
	Index int  `json:"index"`
}

// State is the per-session visual state of a marker.
type State struct {
	Hovered bool `json:"hovered"`
	Hidden  bool `json:"hidden"`
}

// View is a copy of the controller's state for a rendering layer.
type View struct {
	Hover  *MarkerRef `json:"hover,omitempty"`
	Lock   *MarkerRef `json:"lock,omitempty"`
	Events []State    `json:"events"`
	Cities []State    `json:"cities"`
}

// Controller owns the selection state for one session. All methods are safe
// for concurrent use; each operation runs under a single lock.
type Controller struct {
	mu sync.Mutex

	events []domain.Event
	cities []domain.City
	hit    HitTester

	eventStates []State
	cityStates  []State

	hover *MarkerRef
	lock  *MarkerRef
}

// New creates a controller with nothing hovered, locked or hidden.
func New(events []domain.Event, cities []domain.City, hit HitTester) *Controller {
	return &Controller{
		events:      events,
		cities:      cities,
		hit:         hit,
		eventStates: make([]State, len(events)),
		cityStates:  make([]State, len(cities)),
	}
}

// PointerMove recomputes the hover target. It runs whether or not a marker
// is locked.
func (c *Controller) PointerMove(p Pointer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hover != nil {
		c.state(*c.hover).Hovered = false
		c.hover = nil
	}
	ref, ok := c.firstEventHit(p)
	if !ok {
		ref, ok = c.firstCityHit(p)
	}
	if !ok {
		return
	}
	c.hover = &ref
	c.state(ref).Hovered = true
}

// PointerClick clears an active lock, or locks the first visible marker
// under the pointer, events before cities.
func (c *Controller) PointerClick(p Pointer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lock != nil {
		c.lock = nil
		c.unhideAll()
		return
	}

	if ref, ok := c.firstEventHit(p); ok {
		c.lock = &ref
		c.lockEvent(ref.Index)
		return
	}
	if ref, ok := c.firstCityHit(p); ok {
		c.lock = &ref
		c.lockCity(ref.Index)
	}
}

// lockEvent hides every other event and every city outside the event's
// threat circle.
func (c *Controller) lockEvent(idx int) {
	for i := range c.eventStates {
		if i != idx {
			c.eventStates[i].Hidden = true
		}
	}
	ev := c.events[idx]
	radius := ev.ThreatRadiusKm()
	for i := range c.cities {
		if domain.DistanceKm(c.cities[i].Location, ev.Location) > radius {
			c.cityStates[i].Hidden = true
		}
	}
}

// lockCity hides every other city and every event whose own threat circle
// does not reach the city.
func (c *Controller) lockCity(idx int) {
	for i := range c.cityStates {
		if i != idx {
			c.cityStates[i].Hidden = true
		}
	}
	city := c.cities[idx]
	for i := range c.events {
		if domain.DistanceKm(city.Location, c.events[i].Location) > c.events[i].ThreatRadiusKm() {
			c.eventStates[i].Hidden = true
		}
	}
}

func (c *Controller) unhideAll() {
	for i := range c.eventStates {
		c.eventStates[i].Hidden = false
	}
	for i := range c.cityStates {
		c.cityStates[i].Hidden = false
	}
}

func (c *Controller) firstEventHit(p Pointer) (MarkerRef, bool) {
	for i := range c.events {
		if c.eventStates[i].Hidden {
			continue
		}
		m := Marker{Ref: MarkerRef{Kind: KindEvent, Index: i}, Location: c.events[i].Location, Radius: c.events[i].Radius}
		if c.hit.Hit(p, m) {
			return m.Ref, true
		}
	}
	return MarkerRef{}, false
}

func (c *Controller) firstCityHit(p Pointer) (MarkerRef, bool) {
	for i := range c.cities {
		if c.cityStates[i].Hidden {
			continue
		}
		m := Marker{Ref: MarkerRef{Kind: KindCity, Index: i}, Location: c.cities[i].Location}
		if c.hit.Hit(p, m) {
			return m.Ref, true
		}
	}
	return MarkerRef{}, false
}

func (c *Controller) state(ref MarkerRef) *State {
	if ref.Kind == KindCity {
		return &c.cityStates[ref.Index]
	}
	return &c.eventStates[ref.Index]
}

// Hover returns the hovered marker, if any.
func (c *Controller) Hover() (MarkerRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hover == nil {
		return MarkerRef{}, false
	}
	return *c.hover, true
}

// Lock returns the locked marker, if any.
func (c *Controller) Lock() (MarkerRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lock == nil {
		return MarkerRef{}, false
	}
	return *c.lock, true
}

// EventState returns the visual state of event i.
func (c *Controller) EventState(i int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eventStates[i]
}

// CityState returns the visual state of city i.
func (c *Controller) CityState(i int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cityStates[i]
}

// View copies the full selection state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Events: make([]State, len(c.eventStates)),
		Cities: make([]State, len(c.cityStates)),
	}
	copy(v.Events, c.eventStates)
	copy(v.Cities, c.cityStates)
	if c.hover != nil {
		h := *c.hover
		v.Hover = &h
	}
	if c.lock != nil {
		l := *c.lock
		v.Lock = &l
	}
	return v
}
