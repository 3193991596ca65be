package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/selection"
	"github.com/couchcryptid/quake-map/internal/spatial"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	locateCacheSize = 4096
)

// FeedSource fetches the raw earthquake feed.
type FeedSource interface {
	FetchFeed(ctx context.Context) ([]byte, error)
}

// Sink receives every classified event after a successful refresh.
type Sink interface {
	Publish(ctx context.Context, events []domain.ClassifiedEvent) error
}

// Geography is the reference data loaded once at startup.
type Geography struct {
	Boundaries []domain.Boundary
	Cities     []domain.City
	// Locator prefilters boundaries; nil tests every boundary.
	Locator domain.CandidateLocator
}

// Snapshot is the result of one refresh. It is never modified after it is
// published.
type Snapshot struct {
	Events  []domain.ClassifiedEvent
	Cities  []domain.City
	Report  domain.Report
	Entries int
	Skipped []feed.Skipped
}

type state struct {
	snapshot *Snapshot
	session  *selection.Controller
}

// Pipeline fetches, parses and classifies the feed on an interval and
// publishes each result as an immutable snapshot with a fresh selection
// session.
type Pipeline struct {
	source     FeedSource
	geo        Geography
	classifier *domain.Classifier
	locator    *spatial.CachedLocator
	sink       Sink
	hit        selection.HitTester
	logger     *slog.Logger
	metrics    *observability.Metrics
	interval   time.Duration

	current atomic.Pointer[state]
}

// New creates a Pipeline. sink may be nil when nothing downstream consumes
// classified events.
func New(source FeedSource, geo Geography, sink Sink, hit selection.HitTester, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	classifier := domain.NewClassifier(geo.Boundaries, geo.Locator)
	return &Pipeline{
		source:     source,
		geo:        geo,
		classifier: classifier,
		locator:    spatial.NewCachedLocator(classifier, locateCacheSize, metrics.LocateCacheStats()),
		sink:       sink,
		hit:        hit,
		logger:     logger,
		metrics:    metrics,
		interval:   interval,
	}
}

// CheckReadiness returns nil once a refresh has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.current.Load() == nil {
		return errors.New("no feed snapshot loaded yet")
	}
	return nil
}

// Snapshot returns the latest snapshot, or nil before the first refresh.
func (p *Pipeline) Snapshot() *Snapshot {
	if s := p.current.Load(); s != nil {
		return s.snapshot
	}
	return nil
}

// Session returns the selection controller for the latest snapshot, or nil
// before the first refresh.
func (p *Pipeline) Session() *selection.Controller {
	if s := p.current.Load(); s != nil {
		return s.session
	}
	return nil
}

// Current returns the latest snapshot together with the session built for
// it, or nils before the first refresh.
func (p *Pipeline) Current() (*Snapshot, *selection.Controller) {
	if s := p.current.Load(); s != nil {
		return s.snapshot, s.session
	}
	return nil, nil
}

// Boundaries returns the boundary list in classification order.
func (p *Pipeline) Boundaries() []domain.Boundary {
	return p.geo.Boundaries
}

// Locate returns the country containing loc, if any.
func (p *Pipeline) Locate(loc domain.Location) (string, bool) {
	return p.locator.Locate(loc)
}

// Run refreshes on the configured interval until the context is cancelled.
// Failed refreshes are retried with exponential backoff; the last good
// snapshot stays published meanwhile.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "boundaries", len(p.geo.Boundaries), "cities", len(p.geo.Cities))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		if err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			if !retry.SleepWithContext(ctx, backoff) {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		if !retry.SleepWithContext(ctx, p.interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Refresh runs one fetch-parse-classify cycle and publishes the result.
// The new snapshot is published before the sink is written, so a sink
// failure is reported without hiding fresh data.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := time.Now()

	raw, err := p.source.FetchFeed(ctx)
	if err != nil {
		p.metrics.RefreshErrors.Inc()
		return fmt.Errorf("fetch feed: %w", err)
	}

	batch, err := feed.ParseEvents(raw)
	if err != nil {
		p.metrics.RefreshErrors.Inc()
		return fmt.Errorf("parse feed: %w", err)
	}
	p.metrics.FeedEntries.Add(float64(batch.Entries))
	for _, s := range batch.Skipped {
		p.logger.Debug("feed entry skipped", "index", s.Index, "id", s.ID, "reason", s.Reason)
		p.metrics.EntriesSkipped.WithLabelValues(s.Reason).Inc()
	}

	tags := domain.NewTags(len(batch.Events))
	p.classifier.Classify(batch.Events, tags)
	events := domain.Join(batch.Events, tags)
	report := domain.Summarize(events)

	p.metrics.EventsTotal.WithLabelValues("land").Add(float64(report.Total - report.Ocean))
	p.metrics.EventsTotal.WithLabelValues("ocean").Add(float64(report.Ocean))

	p.current.Store(&state{
		snapshot: &Snapshot{
			Events:  events,
			Cities:  p.geo.Cities,
			Report:  report,
			Entries: batch.Entries,
			Skipped: batch.Skipped,
		},
		session: selection.New(batch.Events, p.geo.Cities, p.hit),
	})
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("feed refreshed",
		"entries", batch.Entries,
		"events", len(events),
		"skipped", len(batch.Skipped),
		"ocean", report.Ocean,
		"countries", len(report.Countries),
	)

	if p.sink == nil || len(events) == 0 {
		return nil
	}
	if err := p.sink.Publish(ctx, events); err != nil {
		p.metrics.RefreshErrors.Inc()
		return fmt.Errorf("publish events: %w", err)
	}
	p.metrics.SinkMessages.Add(float64(len(events)))
	return nil
}
