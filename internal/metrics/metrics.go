// Package metrics provides Prometheus metrics for the Pocket Ninja API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileItemsTotal tracks reconciled receipt items by outcome
	ReconcileItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketninja",
			Subsystem: "catalog",
			Name:      "items_total",
			Help:      "Total number of reconciled receipt items by outcome",
		},
		[]string{"outcome"},
	)

	// ReconcileDuration tracks reconciliation batch duration in seconds
	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pocketninja",
			Subsystem: "catalog",
			Name:      "batch_duration_seconds",
			Help:      "Duration of reconciliation batches in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// CatalogCacheReloads tracks catalog snapshot loads from the database
	CatalogCacheReloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pocketninja",
			Subsystem: "catalog",
			Name:      "cache_reloads_total",
			Help:      "Total number of catalog cache reloads",
		},
	)

	// ReceiptsTotal tracks processed receipts by final status
	ReceiptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketninja",
			Subsystem: "receipt",
			Name:      "processed_total",
			Help:      "Total number of processed receipts by status",
		},
		[]string{"status"},
	)

	// ReceiptAnalysisDuration tracks the external receipt analysis call
	ReceiptAnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pocketninja",
			Subsystem: "receipt",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of receipt analysis calls in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	// RewardJobsTotal tracks background reward jobs by kind and status
	RewardJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketninja",
			Subsystem: "reward",
			Name:      "jobs_total",
			Help:      "Total number of reward jobs by kind and status",
		},
		[]string{"kind", "status"},
	)

	// HTTPRequestsTotal tracks inbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketninja",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)
)
