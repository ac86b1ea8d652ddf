// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_chat_turns_total",
			Help: "Total number of chat turns by response type",
		},
		[]string{"response_type"},
	)

	IntentsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_classified_total",
			Help: "Intents resolved per classification source (llm or keyword)",
		},
		[]string{"intent", "source"},
	)

	LLMFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_llm_fallbacks_total",
			Help: "Number of times a deterministic fallback replaced model output",
		},
		[]string{"operation", "reason"},
	)

	GenAIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_genai_request_duration_seconds",
			Help:    "Duration of completion and embedding calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"kind", "outcome"},
	)

	VectorStoreChunks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assistant_vectorstore_chunks",
			Help: "Number of committed chunks per vector store backend",
		},
		[]string{"backend"},
	)

	RoutesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_routes_created_total",
			Help: "Routes built from conversation, by whether the day count was adjusted",
		},
		[]string{"adjusted"},
	)
)
