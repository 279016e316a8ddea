package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in milliseconds.
	HTTPRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Reviewer decisions recorded, by decision value.
	ReviewDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_decisions_total",
			Help: "Reviewer decisions recorded",
		},
		[]string{"decision"},
	)

	// Project lifecycle transitions, by edge.
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_transitions_total",
			Help: "Project lifecycle transitions",
		},
		[]string{"from", "to"},
	)

	// Aggregate transactions retried after a serialization conflict.
	TxConflictRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "project_tx_conflict_retries_total",
			Help: "Aggregate transactions retried after a write conflict",
		},
	)

	// Outbox events published to the broker.
	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_published_total",
			Help: "Outbox events published, by result",
		},
		[]string{"result"},
	)
)

// ObserveHTTP records one request observation.
func ObserveHTTP(method, path, status string, elapsed time.Duration) {
	HTTPRequestLatency.WithLabelValues(method, path, status).Observe(float64(elapsed.Milliseconds()))
}
