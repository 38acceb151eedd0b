// Package metrics registers the application's Prometheus collectors in the
// default registry. Everything is exposed on /metrics via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request counts by method, route pattern and status class.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paragony_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paragony_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	ReceiptsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paragony_receipts_created_total",
			Help: "Total number of receipts created",
		},
	)

	ReceiptEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paragony_receipt_events_published_total",
			Help: "Total number of receipt change events published by action",
		},
		[]string{"action"},
	)

	ReceiptEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paragony_receipt_events_consumed_total",
			Help: "Total number of receipt change events handled by result",
		},
		[]string{"result"}, // ok, error
	)
)
