package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the quake map service.
type Metrics struct {
	// Feed metrics.
	FeedEntries    prometheus.Counter
	EntriesSkipped *prometheus.CounterVec // labels: reason={no_point,bad_magnitude,bad_elevation}
	EventsTotal    *prometheus.CounterVec // labels: classification={land,ocean}

	// Refresh cycle metrics.
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram
	PipelineRunning prometheus.Gauge

	BoundariesIndexed prometheus.Gauge
	SinkMessages      prometheus.Counter
	SelectionLocks    *prometheus.CounterVec // labels: kind={event,city}
	LocateCache       *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedEntries,
		m.EntriesSkipped,
		m.EventsTotal,
		m.RefreshErrors,
		m.RefreshDuration,
		m.PipelineRunning,
		m.BoundariesIndexed,
		m.SinkMessages,
		m.SelectionLocks,
		m.LocateCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_entries_total",
			Help:      "Total entries read from the earthquake feed.",
		}),
		EntriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_entries_skipped_total",
			Help:      "Feed entries dropped during parsing, by reason.",
		}, []string{"reason"}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_classified_total",
			Help:      "Events classified as land or ocean.",
		}, []string{"classification"}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Total failed feed refreshes.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-parse-classify refresh.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		BoundariesIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boundaries_indexed",
			Help:      "Number of country boundaries in the spatial index.",
		}),
		SinkMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_messages_total",
			Help:      "Total classified events written to the sink topic.",
		}),
		SelectionLocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_locks_total",
			Help:      "Markers locked through the session API, by kind.",
		}, []string{"kind"}),
		LocateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_cache_total",
			Help:      "Point lookup cache results.",
		}, []string{"result"}),
	}
}

// LocateCacheStats reports locate cache hits and misses.
type LocateCacheStats struct {
	vec *prometheus.CounterVec
}

// LocateCacheStats returns a hit/miss recorder backed by LocateCache.
func (m *Metrics) LocateCacheStats() LocateCacheStats {
	return LocateCacheStats{vec: m.LocateCache}
}

func (s LocateCacheStats) CacheHit()  { s.vec.WithLabelValues("hit").Inc() }
func (s LocateCacheStats) CacheMiss() { s.vec.WithLabelValues("miss").Inc() }
