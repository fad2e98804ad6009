// Package metrics holds the Prometheus instruments of the engagement service. Instruments are
// registered on the default registry and served by promhttp at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Notification ingestion
	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_notifications_emitted_total",
			Help: "Total number of notifications stored, by kind",
		},
		[]string{"kind"},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_notifications_failed_total",
			Help: "Total number of notifications that could not be stored, by kind",
		},
		[]string{"kind"},
	)

	// Dedup gates that rejected a firing because it already happened
	DedupSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_dedup_skipped_total",
			Help: "Total number of firings skipped because the (user, event, trigger) was already handled",
		},
		[]string{"kind"},
	)

	// Scheduler
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_job_runs_total",
			Help: "Total number of scheduled job ticks, by outcome (ok, error, panic, skipped)",
		},
		[]string{"job", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engagement_job_duration_seconds",
			Help:    "Duration of scheduled job ticks in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// Recommendations
	RecommendationsServed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engagement_recommendations_served",
			Help:    "Number of ranked events returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)

	// HTTP
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engagement_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status_code"},
	)
)

// Job tick outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
	OutcomeSkipped = "skipped"
)

// RecordNotification records the outcome of storing one notification.
func RecordNotification(kind string, err error) {
	if err != nil {
		NotificationsFailed.WithLabelValues(kind).Inc()
		return
	}
	NotificationsEmitted.WithLabelValues(kind).Inc()
}

// RecordDedupSkip records a firing rejected by a dedup gate.
func RecordDedupSkip(kind string) {
	DedupSkipped.WithLabelValues(kind).Inc()
}

// RecordJobRun records one scheduler tick. Skipped ticks carry no duration.
func RecordJobRun(job, outcome string, duration time.Duration) {
	JobRuns.WithLabelValues(job, outcome).Inc()
	if outcome != OutcomeSkipped {
		JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method string, statusCode int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}
