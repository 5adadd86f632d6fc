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

	CompatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compatibility_score",
			Help:    "Distribution of computed compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// outcome: computed | empty | fallback | unavailable
	CompatibilityOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compatibility_outcomes_total",
			Help: "Compatibility computations by outcome",
		},
		[]string{"outcome"},
	)

	VerificationSessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_sessions_started_total",
			Help: "Verification sessions issued, by skill",
		},
		[]string{"skill"},
	)

	// result: passed | failed | not_found
	VerificationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_submissions_total",
			Help: "Verification submissions by result",
		},
		[]string{"result"},
	)

	QuizGenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generation_failures_total",
			Help: "Quiz generation failures by provider",
		},
		[]string{"provider"},
	)

	SkillMarkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skill_verification_write_failures_total",
			Help: "Failed attempts to record a verified skill",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Verified-skill notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency by route",
		},
		[]string{"route"},
	)
)
