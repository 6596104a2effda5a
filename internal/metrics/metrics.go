package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_live_subscriptions",
		Help: "Number of open live data subscriptions",
	})
	SnapshotsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_live_snapshots_total",
			Help: "Snapshots delivered to live subscribers",
		},
		[]string{"collection", "status"},
	)
	ChangeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_change_events_total",
			Help: "Change notifications received from the database",
		},
		[]string{"collection", "op"},
	)
	InvoicesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_invoices_rendered_total",
		Help: "Invoice PDFs rendered",
	})
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_notifications_total",
			Help: "Outbound email notifications by kind and status",
		},
		[]string{"kind", "status"},
	)
)
