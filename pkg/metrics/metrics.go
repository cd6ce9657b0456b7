// Package metrics defines and registers all custom Prometheus metrics for the
// call analyzer dashboard. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto; HTTP server metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts requests issued by the request pipeline.
// Labels:
//   - method: HTTP method (e.g. "GET")
//   - outcome: HTTP status code, "network_error" or "auth_required"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent (or short-circuited) by the backend client.",
	},
	[]string{"method", "outcome"},
)

// BackendRequestDuration measures round-trip time of backend requests.
// Label:
//   - method: HTTP method
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend requests from send to response headers.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "profile_failed", "persist_failed", "in_progress"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts session terminations.
// Label:
//   - reason: "user" (explicit logout) or "token_rejected" (revalidation failed)
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of cleared sessions, by reason.",
	},
	[]string{"reason"},
)

// RevalidationQueueDepth tracks pending revalidation jobs per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RevalidationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "revalidation_queue_depth",
		Help:      "Current number of token revalidation jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// RevalidationsDroppedTotal counts jobs dropped because a worker channel was full.
var RevalidationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revalidations_dropped_total",
		Help:      "Total number of token revalidation jobs dropped on a full queue.",
	},
)

// ── Upload metrics ────────────────────────────────────────────────────────────

// UploadsTotal counts recording uploads.
// Label:
//   - result: "accepted", "rejected" (client-side validation) or "failed"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of call recording uploads, by result.",
	},
	[]string{"result"},
)
