package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDropped = "dropped"
)

var (
	AuditRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_runs_total",
			Help: "Total number of audit runs by outcome",
		},
		[]string{"outcome"},
	)

	AuditRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_run_duration_seconds",
			Help:    "Duration of audit runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SourceDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_source_degraded_total",
			Help: "Upstream sources that were unusable during a run",
		},
		[]string{"source", "reason"},
	)

	FallbackUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_fallback_used_total",
			Help: "Sub-scores computed from the deterministic fallback generator",
		},
		[]string{"component"},
	)

	PersistResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_persist_total",
			Help: "Audit run record writes by outcome",
		},
		[]string{"outcome"},
	)

	RefreshTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_refresh_triggers_total",
			Help: "Refresh triggers received by the scheduler",
		},
		[]string{"trigger"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_history_cache_lookups_total",
			Help: "Run history cache lookups by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_active_sessions",
			Help: "Number of open dashboard sessions",
		},
	)
)
