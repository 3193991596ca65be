package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/quake-map/internal/adapter/source"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/couchcryptid/quake-map/internal/spatial"
)

// loadGeography reads the boundary and city files and indexes the
// boundaries. The returned index is also set as the geography's locator.
func loadGeography(countriesPath, citiesPath string) (pipeline.Geography, *spatial.Index, error) {
	raw, err := os.ReadFile(countriesPath)
	if err != nil {
		return pipeline.Geography{}, nil, fmt.Errorf("read boundaries: %w", err)
	}
	boundaries, err := feed.ParseBoundaries(raw)
	if err != nil {
		return pipeline.Geography{}, nil, fmt.Errorf("%s: %w", countriesPath, err)
	}

	raw, err = os.ReadFile(citiesPath)
	if err != nil {
		return pipeline.Geography{}, nil, fmt.Errorf("read cities: %w", err)
	}
	cities, err := feed.ParseCities(raw)
	if err != nil {
		return pipeline.Geography{}, nil, fmt.Errorf("%s: %w", citiesPath, err)
	}

	index := spatial.NewIndex(boundaries)
	return pipeline.Geography{Boundaries: boundaries, Cities: cities, Locator: index}, index, nil
}

// feedSource reads from FEED_FILE when set, otherwise from FEED_URL.
func feedSource(cfg *config.Config, logger *slog.Logger) pipeline.FeedSource {
	if cfg.FeedFile != "" {
		logger.Info("reading feed from file", "path", cfg.FeedFile)
		return source.FileSource{Path: cfg.FeedFile}
	}
	logger.Info("reading feed from url", "url", cfg.FeedURL, "timeout", cfg.FetchTimeout)
	return source.NewHTTPSource(cfg.FeedURL, cfg.FetchTimeout, logger)
}

// applyPathFlags overrides config file paths with non-empty flag values.
func applyPathFlags(cfg *config.Config, feedFile, countries, cities string) {
	if feedFile != "" {
		cfg.FeedFile = feedFile
	}
	if countries != "" {
		cfg.CountriesFile = countries
	}
	if cities != "" {
		cfg.CitiesFile = cities
	}
}
