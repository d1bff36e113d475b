// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AlertsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_processed_total",
			Help: "Total number of alert units processed, by trigger frequency and outcome",
		},
		[]string{"frequency", "outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications delivered, by encoding mode",
		},
		[]string{"encoding"},
	)

	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_failures_total",
			Help: "Total number of notification delivery failures, by category",
		},
		[]string{"category"},
	)

	PostingsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postings_fetched_total",
			Help: "Total number of job postings returned by the search provider",
		},
		[]string{"mode"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "provider_fetch_duration_seconds",
			Help: "Duration of job-search provider requests in seconds",
		},
		[]string{"mode"},
	)
)
