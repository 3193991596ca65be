package main

import (
	"context"
	"fmt"
	"io"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/spatial"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type validateOptions struct {
	feedFile  string
	countries string
	cities    string
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check feed, boundary and city inputs for integrity problems",
		Long: `validate parses the feed, boundary and city inputs and runs phased
checks: entry accounting, degenerate rings, duplicate names, coordinate
ranges, and agreement between indexed and linear classification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.feedFile, "feed-file", "", "read the feed from this file instead of FEED_URL")
	cmd.Flags().StringVar(&opts.countries, "countries", "", "boundary GeoJSON (default COUNTRIES_FILE)")
	cmd.Flags().StringVar(&opts.cities, "cities", "", "city GeoJSON (default CITIES_FILE)")
	return cmd
}

func runValidate(ctx context.Context, out io.Writer, opts validateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyPathFlags(cfg, opts.feedFile, opts.countries, opts.cities)
	logger := sharedobs.NewLogger("warn", cfg.LogFormat)

	geo, _, err := loadGeography(cfg.CountriesFile, cfg.CitiesFile)
	if err != nil {
		return err
	}
	raw, err := feedSource(cfg, logger).FetchFeed(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	batch, err := feed.ParseEvents(raw)
	if err != nil {
		return err
	}

	phases := validateAll(batch, geo.Boundaries, geo.Cities)
	if !printPhases(out, phases, batch, len(geo.Boundaries), len(geo.Cities)) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func validateAll(batch feed.Batch, boundaries []domain.Boundary, cities []domain.City) []*phase {
	return []*phase{
		validateFeed(batch),
		validateBoundaries(boundaries),
		validateCities(cities),
		validateClassification(batch.Events, boundaries),
	}
}

func printPhases(out io.Writer, phases []*phase, batch feed.Batch, boundaries, cities int) bool {
	fmt.Fprintln(out, "=== Quake Map Input Validation ===")
	fmt.Fprintln(out)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Inputs: %d feed entries (%d events, %d skipped), %d boundaries, %d cities\n",
		batch.Entries, len(batch.Events), len(batch.Skipped), boundaries, cities)
	for reason, n := range batch.SkipCounts() {
		fmt.Fprintf(out, "  skipped %-14s %d\n", reason, n)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
	} else {
		fmt.Fprintln(out, "\nValidation FAILED.")
	}
	return allPassed
}

// ── Phase 1: Feed ──

var knownReasons = map[string]bool{
	feed.ReasonNoPoint:      true,
	feed.ReasonBadMagnitude: true,
	feed.ReasonBadElevation: true,
}

func validateFeed(batch feed.Batch) *phase {
	p := &phase{name: "Phase 1: Feed Parsing"}

	if got := len(batch.Events) + len(batch.Skipped); got != batch.Entries {
		p.errorf("entry accounting: %d entries, but %d events + %d skipped", batch.Entries, len(batch.Events), len(batch.Skipped))
	}
	for _, s := range batch.Skipped {
		if !knownReasons[s.Reason] {
			p.errorf("entry %d (%s): unknown skip reason %q", s.Index, s.ID, s.Reason)
		}
	}

	seen := make(map[string]int, len(batch.Events))
	for i, ev := range batch.Events {
		checkLocation(p, fmt.Sprintf("event %d (%s)", i, ev.Key()), ev.Location)
		if ev.Magnitude < 0 {
			p.errorf("event %d (%s): negative magnitude %.1f", i, ev.Key(), ev.Magnitude)
		}
		if ev.Depth < 0 {
			p.errorf("event %d (%s): negative depth %.1f", i, ev.Key(), ev.Depth)
		}
		if prev, dup := seen[ev.Key()]; dup {
			p.errorf("event %d: key %q duplicates event %d", i, ev.Key(), prev)
		}
		seen[ev.Key()] = i
	}
	return p
}

// ── Phase 2: Boundaries ──

func validateBoundaries(boundaries []domain.Boundary) *phase {
	p := &phase{name: "Phase 2: Boundaries"}

	seen := make(map[string]int, len(boundaries))
	for i, b := range boundaries {
		if b.Name == "" {
			p.errorf("boundary %d: missing name", i)
		} else if prev, dup := seen[b.Name]; dup {
			p.errorf("boundary %d: name %q duplicates boundary %d; only the first can match", i, b.Name, prev)
		} else {
			seen[b.Name] = i
		}
		if len(b.Rings) == 0 {
			p.errorf("boundary %d (%s): no rings", i, b.Name)
		}
		for r, ring := range b.Rings {
			if len(ring) < 3 {
				p.errorf("boundary %d (%s) ring %d: degenerate, %d vertices", i, b.Name, r, len(ring))
			}
			for _, v := range ring {
				if !validLocation(v) {
					p.errorf("boundary %d (%s) ring %d: vertex out of range (%.4f, %.4f)", i, b.Name, r, v.Lat, v.Lon)
					break
				}
			}
		}
	}
	return p
}

// ── Phase 3: Cities ──

func validateCities(cities []domain.City) *phase {
	p := &phase{name: "Phase 3: Cities"}
	for i, c := range cities {
		if c.Name == "" {
			p.errorf("city %d: missing name", i)
		}
		checkLocation(p, fmt.Sprintf("city %d (%s)", i, c.Name), c.Location)
	}
	return p
}

// ── Phase 4: Classification ──
// Indexed classification must agree with a linear scan, and the report must
// account for every event exactly once.

func validateClassification(events []domain.Event, boundaries []domain.Boundary) *phase {
	p := &phase{name: "Phase 4: Classification"}

	linear := domain.NewTags(len(events))
	domain.NewClassifier(boundaries, nil).Classify(events, linear)
	indexed := domain.NewTags(len(events))
	domain.NewClassifier(boundaries, spatial.NewIndex(boundaries)).Classify(events, indexed)

	for i := range events {
		if linear.At(i) != indexed.At(i) {
			p.errorf("event %d (%s): linear=%+v indexed=%+v", i, events[i].Key(), linear.At(i), indexed.At(i))
		}
	}

	report := domain.Summarize(domain.Join(events, indexed))
	counted := report.Ocean
	for _, n := range report.Countries {
		counted += n
	}
	if counted != len(events) || report.Total != len(events) {
		p.errorf("report accounts for %d of %d events (total %d)", counted, len(events), report.Total)
	}
	return p
}

func checkLocation(p *phase, what string, loc domain.Location) {
	if !validLocation(loc) {
		p.errorf("%s: coordinates out of range (%.4f, %.4f)", what, loc.Lat, loc.Lon)
	}
}

func validLocation(loc domain.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lon >= -180 && loc.Lon <= 180
}
