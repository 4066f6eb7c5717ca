// Package metrics defines the custom Prometheus metrics of the identity API.
// It is the single source of truth for metric names, labels and help strings.
//
// All metrics register with the default Prometheus registry on package init
// (promauto) and are exposed on GET /metrics next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adonwheels"

// ── Identity metrics ──────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Labels:
//   - kind: Admin, Advertiser, Publisher, BodyShop (or "unknown")
//   - result: "success", "duplicate_email", "invalid", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - kind: the declared kind (or "unknown")
//   - result: "success", "user_not_found", "invalid_credentials", "invalid", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// AuthorizationsTotal counts token checks performed in front of protected routes.
// Label:
//   - result: "allowed", "invalid", "expired", "forbidden"
var AuthorizationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorizations_total",
		Help:      "Total number of token authorizations, by result.",
	},
	[]string{"result"},
)

// ── Hash pool metrics ─────────────────────────────────────────────────────────

// HashQueueDepth tracks the number of hashing jobs waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// HashDuration measures bcrypt work per job.
// Label:
//   - op: "hash" or "compare"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and compare operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)
