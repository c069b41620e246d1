package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	XPCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameXPCredited,
			Help: HelpTextXPCredited,
		},
	)

	XPRedeemed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameXPRedeemed,
			Help: HelpTextXPRedeemed,
		},
	)

	MinutesGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMinutesGranted,
			Help: HelpTextMinutesGranted,
		},
	)

	TasksApproved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTasksApproved,
			Help: HelpTextTasksApproved,
		},
		[]string{LabelLevel},
	)

	TasksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTasksRejected,
			Help: HelpTextTasksRejected,
		},
		[]string{LabelLevel},
	)

	TasksExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTasksExpired,
			Help: HelpTextTasksExpired,
		},
	)

	StoreConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStoreConflictRetries,
			Help: HelpTextStoreConflictRetries,
		},
		[]string{LabelOperation},
	)
)
