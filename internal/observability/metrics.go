package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Schedule lifecycle events recorded on SchedulesTotal.
const (
	EventScheduled = "scheduled"
	EventFired     = "fired"
	EventResumed   = "resumed"
	EventCompleted = "completed"
	EventFailed    = "failed"
	EventCancelled = "cancelled"
)

// Response outcomes recorded on ReviewResponsesTotal.
const (
	PathImmediate = "immediate"
	PathScheduled = "scheduled"

	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

var (
	// SchedulesTotal counts schedule lifecycle events.
	SchedulesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servisbet_schedules_total",
			Help: "Scheduled response batches by lifecycle event.",
		},
		[]string{"event"},
	)

	// ReviewResponsesTotal counts per-review response attempts.
	ReviewResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servisbet_review_responses_total",
			Help: "Business responses written to reviews, by path and outcome.",
		},
		[]string{"path", "outcome"},
	)

	// ScheduleFireDuration observes the wall time of one batch execution.
	ScheduleFireDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "servisbet_schedule_fire_duration_seconds",
			Help:    "Duration of scheduled batch executions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// SchedulesSwept counts terminal batches removed by the retention sweep.
	SchedulesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servisbet_schedules_swept_total",
			Help: "Terminal scheduled batches purged by the retention sweep.",
		},
	)
)
