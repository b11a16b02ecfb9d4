package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoconnect",
			Name:      "inference_requests_total",
			Help:      "Total number of inference requests",
		},
		[]string{"operation", "status"}, // status: success / degraded
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hemoconnect",
			Name:      "inference_request_duration_seconds",
			Help:      "Inference request duration in seconds, including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	InferenceRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoconnect",
			Name:      "inference_retries_total",
			Help:      "Total inference retry attempts after transient failures",
		},
		[]string{"operation"},
	)

	RateLimitChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoconnect",
			Name:      "rate_limit_checks_total",
			Help:      "Rate limiter decisions",
		},
		[]string{"action", "decision"}, // decision: allowed / denied
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoconnect",
			Name:      "search_requests_total",
			Help:      "Search requests by the method that served them",
		},
		[]string{"method"}, // semantic / keyword
	)

	ModerationVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoconnect",
			Name:      "moderation_verdicts_total",
			Help:      "Moderation gate outcomes",
		},
		[]string{"verdict"}, // clean / toxic / unavailable
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoconnect",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups",
		},
		[]string{"result"}, // hit / miss
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceRequestDuration)
	prometheus.MustRegister(InferenceRetriesTotal)
	prometheus.MustRegister(RateLimitChecksTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(ModerationVerdictsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	pipelineMetricsRegistered = true
}
