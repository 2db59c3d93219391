// Package metrics holds the prometheus collectors shared by the HTTP layer
// and the food repositories.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPRequestsInFlight is the number of requests being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodflow_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// RateLimitRejects counts requests refused by the limiter.
	RateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodflow_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)

	// PanicRecoveries counts panics recovered in handlers.
	PanicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodflow_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	// StoreRequestCharge accumulates the cost reported by the store.
	StoreRequestCharge = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodflow_store_request_charge_total",
			Help: "Request units consumed by store operations",
		},
		[]string{"store", "op"},
	)

	// StoreOperationDuration tracks wall-clock time of store operations.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodflow_store_operation_duration_seconds",
			Help:    "Store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "op"},
	)

	// StorePageFetches tracks how many store fetches a paging request needed.
	StorePageFetches = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodflow_store_page_fetches",
			Help:    "Store fetches read to serve one page",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"store", "op"},
	)
)

// ObserveStore records one store operation.
func ObserveStore(store, op string, charge float64, elapsed time.Duration) {
	StoreRequestCharge.WithLabelValues(store, op).Add(charge)
	StoreOperationDuration.WithLabelValues(store, op).Observe(elapsed.Seconds())
}
