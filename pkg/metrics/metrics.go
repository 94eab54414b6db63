// Package metrics is the single source of truth for the engine's Prometheus
// metric names, labels, and help strings. Collectors register themselves via
// promauto at init; expose them through promhttp.Handler on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scholarly"

// LifecycleTransitionsTotal counts lifecycle operations by outcome.
// Labels:
//   - operation: signup, confirm_email, resend_confirmation, complete_profile, sign_in
//   - outcome: ok, or the error code (lowercased) that blocked it
var LifecycleTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_transitions_total",
		Help:      "Total lifecycle operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// AdminActionsTotal counts access-control decisions on admin surfaces.
// Labels:
//   - action: promote, demote, set_status, reset_password, list_users
//   - outcome: ok, forbidden, not_found, validation_error, ...
var AdminActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_actions_total",
		Help:      "Total admin operations, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// HTTPRequestDuration measures request latency per route and status class.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method, route pattern, and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
