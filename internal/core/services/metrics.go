package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("artifact-version-service/services")

// ============================================================================
// Prometheus Metrics
// ============================================================================

var (
	// commitItemsTotal counts commit items by entity kind and outcome
	commitItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "versioning_commit_items_total",
		Help: "Total commit items by entity kind and outcome",
	}, []string{"kind", "outcome"})

	// commitDuration tracks commit latency
	commitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "versioning_commit_duration_seconds",
		Help:    "Commit duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"kind", "mode"})

	// commitAborts counts commits aborted by a storage invariant violation
	commitAborts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "versioning_commit_aborts_total",
		Help: "Total commits aborted by a duplicate version record",
	}, []string{"kind"})

	// deltaDuration tracks delta computation latency
	deltaDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "versioning_delta_duration_seconds",
		Help:    "Entity delta computation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"kind"})

	// deltaSize tracks how many entities a delta reports
	deltaSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "versioning_delta_entities",
		Help:    "Number of entities reported by a delta",
		Buckets: []float64{0, 1, 10, 100, 1000, 10000},
	}, []string{"kind"})
)
