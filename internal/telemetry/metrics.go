package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts completed turns by outcome ("ok" or the error
	// kind that failed the turn).
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "consult",
		Name:      "turns_total",
		Help:      "Conversation turns processed, by outcome.",
	}, []string{"outcome"})

	// ToolInvocations counts tool dispatches by tool name.
	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "consult",
		Name:      "tool_invocations_total",
		Help:      "Tool calls dispatched by the conversation controller.",
	}, []string{"tool"})

	// ModelCallDuration observes chat-completion latency in seconds.
	ModelCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "consult",
		Name:      "model_call_duration_seconds",
		Help:      "Latency of chat-completion calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"purpose"})

	// CatalogResults observes the match count of catalog lookups.
	CatalogResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "consult",
		Name:      "catalog_results",
		Help:      "Documents matched per catalog lookup.",
		Buckets:   []float64{0, 1, 3, 10, 30, 100, 300},
	})
)
