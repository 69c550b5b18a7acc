package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "school_risk"

// Metrics holds the Prometheus counters and histograms for the risk service.
type Metrics struct {
	// Upstream GraphDB metrics.
	UpstreamQueries  *prometheus.CounterVec   // labels: kind={schools,accidents,radars}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: kind
	CacheLookups     *prometheus.CounterVec   // labels: kind, result={hit,miss}
	CacheEnabled     prometheus.Gauge

	// Correlation metrics.
	AnchorsScored   prometheus.Counter
	RankingDuration prometheus.Histogram

	// Assessment publishing.
	AssessmentsPublished prometheus.Counter
	PublishErrors        prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamQueries,
		m.UpstreamDuration,
		m.CacheLookups,
		m.CacheEnabled,
		m.AnchorsScored,
		m.RankingDuration,
		m.AssessmentsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_queries_total",
			Help:      "SPARQL queries sent to GraphDB by dataset kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_query_duration_seconds",
			Help:      "GraphDB query duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by dataset kind and result.",
		}, []string{"kind", "result"}),
		CacheEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "result_cache_enabled",
			Help:      "1 when the result cache has a positive TTL, 0 otherwise.",
		}),
		AnchorsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schools_scored_total",
			Help:      "Schools with a resolvable position that were risk-scored.",
		}),
		RankingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Duration of a complete fetch-correlate-rank cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_published_total",
			Help:      "Ranked school assessments written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_publish_errors_total",
			Help:      "Failed attempts to publish a ranking to Kafka.",
		}),
	}
}
