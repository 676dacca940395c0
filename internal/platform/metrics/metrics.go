package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelter_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_workflow_transitions_total",
			Help: "Total number of committed status transitions",
		},
		[]string{"kind", "status"},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_notifications_dispatched_total",
			Help: "Total number of persisted notifications",
		},
		[]string{"type"},
	)

	RealtimePublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_realtime_publish_failures_total",
			Help: "Total number of failed real-time publishes",
		},
		[]string{"event"},
	)

	ChatMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelter_chat_messages_sent_total",
			Help: "Total number of stored chat messages",
		},
	)
)
