// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	FeedAssemblyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_assembly_duration_seconds",
			Help:    "Time spent assembling a recipe feed page",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	FeedDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_degraded_total",
			Help: "Feed requests answered with an empty page after an upstream failure",
		},
		[]string{"view"},
	)

	// edge: vote, follow, save. outcome: created, updated, removed, conflict.
	ToggleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toggle_transitions_total",
			Help: "Toggle state transitions by edge type and outcome",
		},
		[]string{"edge", "outcome"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Read cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ActivityWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_write_failures_total",
			Help: "Activity log writes that failed and were skipped",
		},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordFeedAssembly(view string, duration time.Duration) {
	FeedAssemblyDuration.WithLabelValues(view).Observe(duration.Seconds())
}

func RecordFeedDegraded(view string) {
	FeedDegradedTotal.WithLabelValues(view).Inc()
}

func RecordToggle(edge, outcome string) {
	ToggleTransitionsTotal.WithLabelValues(edge, outcome).Inc()
}

func RecordCacheResult(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

func RecordActivityWriteFailure() {
	ActivityWriteFailures.Inc()
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
