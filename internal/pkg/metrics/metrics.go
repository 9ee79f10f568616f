// Package metrics defines and registers all custom Prometheus metrics for the
// service portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Access metrics ────────────────────────────────────────────────────────────

// GateDecisionsTotal counts access gate outcomes.
// Labels:
//   - view: the route path of the guarded view (e.g. "/applicant-dashboard")
//   - decision: "allow", "redirect_login" or "redirect_forbidden"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions, by view and outcome.",
	},
	[]string{"view", "decision"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - surface: the login surface used ("applicant" or "supplier")
//   - result: "ok", "rejected" or "role_mismatch"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by surface and result.",
	},
	[]string{"surface", "result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts orders submitted to the backend.
// Label:
//   - free: "true" when the eligibility rule made the order free
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed, by free-order eligibility.",
	},
	[]string{"free"},
)

// OrderTransitionsTotal counts status changes requested through the portal.
// Labels:
//   - status: the target status ("cancelled" or "completed")
//   - role: the role that requested it
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status transitions requested, by target status and role.",
	},
	[]string{"status", "role"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the ordering API.
// Labels:
//   - operation: client method (e.g. "current_orders")
//   - outcome: "ok", "unauthorized", "not_found", "rejected", "network" or "circuit_open"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of ordering API requests, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// BackendRequestDuration measures ordering API latency.
// Label:
//   - operation: client method
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of ordering API requests.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)

// BackendBreakerState tracks the circuit breaker in front of the ordering API.
// 0 = closed, 1 = half-open, 2 = open.
var BackendBreakerState = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_breaker_state",
		Help:      "State of the ordering API circuit breaker (0 closed, 1 half-open, 2 open).",
	},
)
