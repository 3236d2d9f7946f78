package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream targets.
const (
	TargetRepository = "repository"
	TargetMetadata   = "metadata"
	TargetStorage    = "storage"
)

// Upstream Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archivist",
			Name:      "upstream_requests_total",
			Help:      "Calls to the document repository, metadata store and object storage",
		},
		[]string{"target", "operation", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "archivist",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream call duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"target", "operation"},
	)

	EnrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archivist",
			Name:      "page_count_enrichment_total",
			Help:      "Page-count enrichment outcomes",
		},
		[]string{"status"}, // "enriched" / "unavailable"
	)

	SuppressedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archivist",
			Name:      "suppressed_documents_total",
			Help:      "Entries removed from search results by the visibility filter",
		},
		[]string{"category"},
	)
)

var registerUpstream sync.Once

// RegisterUpstreamMetrics registers upstream metrics. Call from main; safe to call twice.
func RegisterUpstreamMetrics() {
	registerUpstream.Do(func() {
		prometheus.MustRegister(UpstreamRequestsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(EnrichmentTotal)
		prometheus.MustRegister(SuppressedDocumentsTotal)
	})
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(target, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(target, operation, status).Inc()
	UpstreamRequestDuration.WithLabelValues(target, operation).Observe(time.Since(start).Seconds())
}
