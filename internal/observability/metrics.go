// Package observability exposes prometheus metrics for the sync engine.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	oracleRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papsync",
			Subsystem: "oracle",
			Name:      "requests_total",
			Help:      "Oracle HTTP attempts by outcome.",
		},
		[]string{"outcome"},
	)
	oracleRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "papsync",
			Subsystem: "oracle",
			Name:      "retries_total",
			Help:      "Oracle attempts beyond the first.",
		},
	)
	reconcileDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papsync",
			Subsystem: "reconcile",
			Name:      "decisions_total",
			Help:      "Reconciliation decisions by kind.",
		},
		[]string{"decision"},
	)
	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papsync",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Completed sync runs by outcome.",
		},
		[]string{"outcome"},
	)
)

// Outcome labels for oracle request metrics.
const (
	OutcomeOK        = "ok"
	OutcomeTransient = "transient_error"
	OutcomeFatal     = "fatal_error"
)

// Decision labels for reconcile metrics.
const (
	DecisionInsert = "insert"
	DecisionUpdate = "update"
	DecisionSkip   = "skip"
	DecisionError  = "error"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(oracleRequests, oracleRetries, reconcileDecisions, syncRuns)
	})
}

func RecordOracleRequest(outcome string) {
	RegisterMetrics()
	oracleRequests.WithLabelValues(outcome).Inc()
}

func RecordOracleRetries(n int) {
	if n <= 0 {
		return
	}
	RegisterMetrics()
	oracleRetries.Add(float64(n))
}

func RecordReconcileDecision(decision string) {
	RegisterMetrics()
	reconcileDecisions.WithLabelValues(decision).Inc()
}

func RecordSyncRun(outcome string) {
	RegisterMetrics()
	syncRuns.WithLabelValues(outcome).Inc()
}
