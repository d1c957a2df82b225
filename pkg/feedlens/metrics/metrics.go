// Package metrics exposes Prometheus instrumentation for the enrichment
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// RecordsEnriched counts successfully enriched records by source.
	RecordsEnriched *prometheus.CounterVec
	// RecordsFailed counts rejected records by reason.
	RecordsFailed *prometheus.CounterVec
	// EnrichDuration measures per-record enrichment time.
	EnrichDuration prometheus.Histogram
	// ClustersFound counts clusters reported by clustering runs.
	ClustersFound prometheus.Counter
	// ClusterDuration measures clustering runs.
	ClusterDuration prometheus.Histogram
	// RecordsPersisted counts records written to the store.
	RecordsPersisted prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsEnriched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedlens_records_enriched_total",
				Help: "Total number of feedback records enriched",
			},
			[]string{"source"},
		),
		RecordsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedlens_records_failed_total",
				Help: "Total number of feedback records rejected during enrichment",
			},
			[]string{"reason"},
		),
		EnrichDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feedlens_enrich_duration_seconds",
				Help:    "Time spent enriching a single record",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		ClustersFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "feedlens_clusters_found_total",
				Help: "Total number of duplicate clusters reported",
			},
		),
		ClusterDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feedlens_cluster_duration_seconds",
				Help:    "Duration of clustering runs",
				Buckets: prometheus.DefBuckets,
			},
		),
		RecordsPersisted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "feedlens_records_persisted_total",
				Help: "Total number of enriched records written to the store",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.RecordsEnriched,
			m.RecordsFailed,
			m.EnrichDuration,
			m.ClustersFound,
			m.ClusterDuration,
			m.RecordsPersisted,
		)
	}
	return m
}

// ObserveEnriched records one successful enrichment.
func (m *Metrics) ObserveEnriched(source string, d time.Duration) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.RecordsEnriched.WithLabelValues(source).Inc()
	m.EnrichDuration.Observe(d.Seconds())
}

// ObserveFailed records one rejected record.
func (m *Metrics) ObserveFailed(reason string) {
	if m == nil {
		return
	}
	m.RecordsFailed.WithLabelValues(reason).Inc()
}

// ObserveClusters records a clustering run.
func (m *Metrics) ObserveClusters(n int, d time.Duration) {
	if m == nil {
		return
	}
	m.ClustersFound.Add(float64(n))
	m.ClusterDuration.Observe(d.Seconds())
}

// ObservePersisted records n stored records.
func (m *Metrics) ObservePersisted(n int) {
	if m == nil {
		return
	}
	m.RecordsPersisted.Add(float64(n))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
