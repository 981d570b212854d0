// Package metrics exposes the Prometheus collectors for the engagement and
// notification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngagementsTotal counts engagement writes by kind and result (created, conflict, error)
	EngagementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_engagements_total",
			Help: "Total number of engagement create attempts",
		},
		[]string{"kind", "result"},
	)

	// NotificationsTotal counts notify outcomes: created, self, missing_post, dropped
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microblog_notifications_total",
			Help: "Total number of notification generator outcomes",
		},
		[]string{"kind", "outcome"},
	)

	FeedBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "microblog_notification_feed_build_seconds",
			Help:    "Time spent building aggregated notification feeds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FeedBuildFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "microblog_notification_feed_failures_total",
			Help: "Feed builds that degraded to an empty feed",
		},
	)

	NotificationBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "microblog_notification_breaker_state",
			Help: "Notification insert circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// RecordEngagement increments the engagement counter
func RecordEngagement(kind, result string) {
	EngagementsTotal.WithLabelValues(kind, result).Inc()
}

// RecordNotification increments the notification outcome counter
func RecordNotification(kind, outcome string) {
	NotificationsTotal.WithLabelValues(kind, outcome).Inc()
}
