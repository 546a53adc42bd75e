package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	adminRequestsTotal      *prometheus.CounterVec
	adminLatencySeconds     *prometheus.HistogramVec
	adminErrorsTotal        *prometheus.CounterVec
	moderationActionsTotal  *prometheus.CounterVec
	auditWriteFailuresTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for admin traffic and moderation.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		moderationActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Committed moderation actions by audit action type.",
		}, []string{"action"})

		auditWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit entries that could not be written after a moderation write.",
		})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			moderationActionsTotal,
			auditWriteFailuresTotal,
		)
	})
}

func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ModerationActions counts committed moderation actions, labelled by audit action.
func ModerationActions() *prometheus.CounterVec {
	RegisterMetrics()
	return moderationActionsTotal
}

// AuditWriteFailures counts audit inserts that failed and were dropped.
func AuditWriteFailures() prometheus.Counter {
	RegisterMetrics()
	return auditWriteFailuresTotal
}
