// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MessagesProcessedTotal tracks inbound messages handled per channel.
	MessagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_processed_total",
			Help: "Inbound messages processed",
		},
		[]string{"channel", "status"},
	)

	// LLMRequestDuration tracks language-model call duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Language model request duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"provider", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// ToolExecutionsTotal tracks tool invocations requested by the model.
	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_executions_total",
			Help: "Tool invocations requested by the model",
		},
		[]string{"tool", "status"},
	)

	// HistoryRepairsTotal tracks discarded tool-use/tool-result pairs.
	HistoryRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_repairs_total",
			Help: "Malformed history pairs discarded by the sanitizer",
		},
	)

	// CatalogFetchesTotal tracks bulk catalog fetches against the provider.
	CatalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Bulk catalog fetches",
		},
		[]string{"result"},
	)

	// CatalogCacheHitsTotal tracks catalog cache hits.
	CatalogCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Catalog reads served from cache",
		},
	)

	// ChannelSendsTotal tracks outbound channel sends.
	ChannelSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_sends_total",
			Help: "Outbound channel sends",
		},
		[]string{"channel", "kind", "status"},
	)

	// WebhookDuplicatesTotal tracks deduplicated webhook deliveries.
	WebhookDuplicatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_duplicates_total",
			Help: "Webhook deliveries dropped as duplicates",
		},
		[]string{"channel"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for one language-model call.
func RecordLLMRequest(provider, status string, duration float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(provider, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
}

// RecordToolExecution records one tool invocation.
func RecordToolExecution(tool, status string) {
	ToolExecutionsTotal.WithLabelValues(tool, status).Inc()
}

// RecordChannelSend records one outbound send attempt.
func RecordChannelSend(channel, kind, status string) {
	ChannelSendsTotal.WithLabelValues(channel, kind, status).Inc()
}
