// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_transitions_total",
			Help: "Total lifecycle transitions applied, by target status",
		},
		[]string{"to_status"},
	)

	TransitionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_transitions_rejected_total",
			Help: "Transitions rejected by a guard, by violated guard code",
		},
		[]string{"error_code"},
	)

	EligibilityVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_verdicts_total",
			Help: "Eligibility evaluations, by aggregate outcome",
		},
		[]string{"eligible"},
	)

	ProgramsSynced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "programs_synced_total",
			Help: "Support program records upserted from the data portal",
		},
	)

	ProgramSearches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "program_searches_total",
			Help: "Support program searches executed",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications dispatched, by channel and status",
		},
		[]string{"channel", "status"},
	)
)
