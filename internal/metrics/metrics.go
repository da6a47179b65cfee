// Package metrics defines and registers all custom Prometheus metrics for the
// student records API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "student_portal"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts self-service registrations.
// Label:
//   - result: "created", "username_taken", "email_taken" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// PasswordChangesTotal counts password change attempts.
// Label:
//   - result: "changed", "not_found", "wrong_password" or "error"
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change attempts, by result.",
	},
	[]string{"result"},
)

// ── Student metrics ───────────────────────────────────────────────────────────

// StudentsSavedTotal counts student records persisted after normalization.
var StudentsSavedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "students_saved_total",
		Help:      "Total number of student records persisted.",
	},
)

// NormalizationFailuresTotal counts student records rejected by the enrollment rules.
// Label:
//   - code: validation code (e.g. "course_span_exceeded")
var NormalizationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalization_failures_total",
		Help:      "Total number of student records rejected during normalization, by code.",
	},
	[]string{"code"},
)

// AccountsReconciledTotal counts portal account reconciliation outcomes.
// Label:
//   - outcome: "created", "role_added", "unchanged", "skipped" or "failed"
var AccountsReconciledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_reconciled_total",
		Help:      "Total number of portal account reconciliations, by outcome.",
	},
	[]string{"outcome"},
)

// ReconcileQueueDepth tracks the number of students waiting in each backfill worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ReconcileQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconcile_queue_depth",
		Help:      "Current number of students pending in each reconciliation worker channel.",
	},
	[]string{"worker_id"},
)

// ReconcileDuration measures a single account reconciliation end-to-end.
var ReconcileDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of a single portal account reconciliation.",
		Buckets:   prometheus.DefBuckets,
	},
)
