package domain

import (
	"fmt"
	"sort"
	"time"
)

// Report counts classified events per country plus an ocean bucket.
type Report struct {
	Countries   map[string]int `json:"countries"`
	Ocean       int            `json:"ocean"`
	Total       int            `json:"total"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Summarize counts land events by country and everything else as ocean.
// It does not modify events.
func Summarize(events []ClassifiedEvent) Report {
	r := Report{
		Countries:   make(map[string]int),
		Total:       len(events),
		GeneratedAt: clock.Now(),
	}
	for i := range events {
		if events[i].OnLand {
			r.Countries[events[i].Country]++
			continue
		}
		r.Ocean++
	}
	return r
}

// Lines renders the report one country per line in boundary order, skipping
// countries without events, followed by the ocean total.
func (r Report) Lines(boundaries []Boundary) []string {
	lines := make([]string, 0, len(r.Countries)+1)
	seen := make(map[string]bool, len(boundaries))
	for _, b := range boundaries {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		if n := r.Countries[b.Name]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d earthquake(s)", b.Name, n))
		}
	}
	lines = append(lines, fmt.Sprintf("OCEAN QUAKES: %d earthquake(s)", r.Ocean))
	return lines
}

// TopByMagnitude returns up to n events ordered by descending magnitude.
// Ties keep feed order. The input slice is not reordered.
func TopByMagnitude(events []ClassifiedEvent, n int) []ClassifiedEvent {
	sorted := make([]ClassifiedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Magnitude > sorted[j].Magnitude
	})
	if n < 0 || n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
