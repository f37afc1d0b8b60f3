// Package metrics defines and registers all custom Prometheus metrics for the
// groompost API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through
// promauto when the package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "groompost"

// ── Post metrics ──────────────────────────────────────────────────────────────

// PostsCreatedTotal counts newly created draft posts.
var PostsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of grooming posts created.",
	},
)

// UploadsTotal counts before/after upload requests.
// Label:
//   - result: "ok", "rejected" (validation) or "error" (storage failure)
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of image pair uploads, by result.",
	},
	[]string{"result"},
)

// CaptionsGeneratedTotal counts caption generation requests.
// Label:
//   - result: "ok", "invalid" or "error"
var CaptionsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "captions_generated_total",
		Help:      "Total number of caption generation requests, by result.",
	},
	[]string{"result"},
)

// ── Publish metrics ───────────────────────────────────────────────────────────

// PublishTotal counts Instagram publish attempts.
// Labels:
//   - result: "success", "failed", "not_configured" or "already_published"
//   - step: the failing publish step, empty unless result is "failed"
var PublishTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_total",
		Help:      "Total number of Instagram publish attempts, by result and failing step.",
	},
	[]string{"result", "step"},
)

// PublishDuration measures the wall time of a carousel publish sequence.
// Label:
//   - result: "success" or "failed"
var PublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "publish_duration_seconds",
		Help:      "Duration of the Graph API publish sequence.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40},
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditRecordsTotal counts publish audit records by outcome.
// Label:
//   - result: "stored", "error" or "dropped"
var AuditRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_total",
		Help:      "Total number of publish audit records, by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the records waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
