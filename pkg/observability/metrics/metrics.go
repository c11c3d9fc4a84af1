// Package metrics provides Prometheus metrics for docstore operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation operation labels.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Mutation outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "validation_failed"
	OutcomeNotFound     = "not_found"
	OutcomeNoop         = "noop"
	OutcomeStorageError = "storage_error"
)

var (
	// mutationDuration tracks lifecycle operation duration in seconds.
	// Labels: collection, operation
	mutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_mutation_duration_seconds",
			Help:    "Lifecycle mutation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "operation"},
	)

	// mutationsTotal tracks lifecycle operations by outcome.
	// Labels: collection, operation, outcome
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_mutations_total",
			Help: "Total number of lifecycle mutations",
		},
		[]string{"collection", "operation", "outcome"},
	)

	// pageDuration tracks keyset page fetches.
	// Labels: collection
	pageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_page_duration_seconds",
			Help:    "Keyset page fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// pagesTotal tracks total keyset page fetches.
	// Labels: collection
	pagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_pages_total",
			Help: "Total number of keyset page fetches",
		},
		[]string{"collection"},
	)
)

// RecordMutation records one lifecycle mutation with its outcome.
func RecordMutation(collection, operation, outcome string, duration time.Duration) {
	mutationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
	mutationsTotal.WithLabelValues(collection, operation, outcome).Inc()
}

// RecordPage records one keyset page fetch.
func RecordPage(collection string, duration time.Duration) {
	pageDuration.WithLabelValues(collection).Observe(duration.Seconds())
	pagesTotal.WithLabelValues(collection).Inc()
}
