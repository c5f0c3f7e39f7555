// Package metrics defines and registers all custom Prometheus metrics for
// the sparkchat wallet core. It is the single source of truth for metric
// names, labels, and help strings. Metrics register with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sparkchat"

// ── Message metrics ───────────────────────────────────────────────────────────

// MessagesProcessedTotal counts inbound chat messages that completed
// processing (binding resolved, session touched).
var MessagesProcessedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_processed_total",
		Help:      "Total number of inbound messages successfully processed.",
	},
)

// MessagesErrorsTotal counts messages that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "resolve_failed")
var MessagesErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_errors_total",
		Help:      "Total number of inbound messages that failed processing.",
	},
	[]string{"reason"},
)

// MessagesDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (redelivery, skipped) or "miss" (new message, processed)
var MessagesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dedup_total",
		Help:      "Total number of webhook dedup checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// MessageProcessingDuration measures end-to-end processing of one message.
var MessageProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_processing_duration_seconds",
		Help:      "Duration of message processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// MessagesQueueDepth tracks messages waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MessagesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "messages_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// InvoicesCreatedTotal counts invoices created on the payment network.
// Label:
//   - path: "SDK" or "REST"
var InvoicesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Total number of invoices created, by gateway path.",
	},
	[]string{"path"},
)

// GatewayErrorsTotal counts failed calls into the payment network.
// Label:
//   - path: "SDK" or "REST"
var GatewayErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_errors_total",
		Help:      "Total number of failed gateway calls, by path.",
	},
	[]string{"path"},
)

// TokensIssuedTotal counts signed credentials minted for the network.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of short-lived signed tokens issued.",
	},
)
