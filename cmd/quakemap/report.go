package main

import (
	"context"
	"fmt"
	"io"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/couchcryptid/quake-map/internal/selection"
)

type reportOptions struct {
	feedFile  string
	countries string
	cities    string
	top       int
}

func newReportCmd() *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch the feed once and print per-country counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.feedFile, "feed-file", "", "read the feed from this file instead of FEED_URL")
	cmd.Flags().StringVar(&opts.countries, "countries", "", "boundary GeoJSON (default COUNTRIES_FILE)")
	cmd.Flags().StringVar(&opts.cities, "cities", "", "city GeoJSON (default CITIES_FILE)")
	cmd.Flags().IntVarP(&opts.top, "top", "n", 5, "also list the N strongest quakes (0 to disable)")
	return cmd
}

func runReport(ctx context.Context, out io.Writer, opts reportOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyPathFlags(cfg, opts.feedFile, opts.countries, opts.cities)

	// Warnings only, so log lines do not interleave with the report.
	logger := sharedobs.NewLogger("warn", cfg.LogFormat)

	geo, _, err := loadGeography(cfg.CountriesFile, cfg.CitiesFile)
	if err != nil {
		return err
	}

	p := pipeline.New(feedSource(cfg, logger), geo, nil, selection.RadiusHitTester{RadiusKm: cfg.HitRadiusKm},
		logger, observability.NewMetricsForTesting(), cfg.RefreshInterval)
	if err := p.Refresh(ctx); err != nil {
		return err
	}

	writeReport(out, p.Snapshot(), geo.Boundaries, opts.top)
	return nil
}

func writeReport(out io.Writer, snap *pipeline.Snapshot, boundaries []domain.Boundary, top int) {
	for _, line := range snap.Report.Lines(boundaries) {
		fmt.Fprintln(out, line)
	}
	if len(snap.Skipped) > 0 {
		fmt.Fprintf(out, "SKIPPED ENTRIES: %d of %d\n", len(snap.Skipped), snap.Entries)
	}
	if top <= 0 || len(snap.Events) == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Top %d by magnitude:\n", min(top, len(snap.Events)))
	for i, ev := range domain.TopByMagnitude(snap.Events, top) {
		where := "ocean"
		if ev.OnLand {
			where = ev.Country
		}
		fmt.Fprintf(out, "  %d. M%.1f  %-12s %-12s %s\n", i+1, ev.Magnitude, where, ev.DepthTier, ev.Title)
	}
}
