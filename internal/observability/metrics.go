// Package observability holds domain Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DealTransitions counts deal status changes by source and target status and outcome.
	DealTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_deal_transitions_total",
		Help: "Deal status transitions by from, to and result",
	}, []string{"from", "to", "result"})

	// DealsCreated counts CreateDeal outcomes by error code ("ok" on success).
	DealsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_deals_created_total",
		Help: "CreateDeal calls by result",
	}, []string{"result"})

	// ConversationFanoutSize records the number of counterparties per ListConversations call.
	ConversationFanoutSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rizq_conversation_fanout_size",
		Help:    "Distinct counterparties resolved per conversation list",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	// DegradedJoins counts list entries rendered with a placeholder.
	DegradedJoins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_degraded_joins_total",
		Help: "Deal or conversation fields replaced by a placeholder",
	}, []string{"kind"})

	// StoreErrors counts classified repository errors.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_store_errors_total",
		Help: "Repository errors by operation and code",
	}, []string{"operation", "code"})

	// StoreRetries counts retries of transient store errors.
	StoreRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_store_retries_total",
		Help: "Retries of transient store errors by operation",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository call latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rizq_database_query_latency_seconds",
		Help:    "Repository call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// FeedEvents counts change feed events by table, event and direction.
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_feed_events_total",
		Help: "Change feed events by table, event type and direction",
	}, []string{"table", "event", "direction"})

	// FeedSubscriptions is the number of open change feed subscriptions.
	FeedSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rizq_feed_subscriptions",
		Help: "Open change feed subscriptions",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rizq_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records the latency of operation when called.
func TrackQuery(operation string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
