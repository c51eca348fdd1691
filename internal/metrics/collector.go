// Package metrics provides internal metrics collection for the Q&A pipeline.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the Prometheus instruments for the service.
type Collector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline
	chatRequestsTotal     *prometheus.CounterVec
	pipelineDuration      *prometheus.HistogramVec
	retrievalHits         *prometheus.HistogramVec
	rerankFallbacksTotal  prometheus.Counter
	suggestionParsesTotal *prometheus.CounterVec

	// LLM
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers the instruments under the given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.chatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Total number of chat requests by query class",
		},
		[]string{"query_class", "status"},
	)

	c.pipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"query_class"},
	)

	c.retrievalHits = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_hits",
			Help:      "Number of hits admitted into answer context",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"strategy"},
	)

	c.rerankFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_fallbacks_total",
			Help:      "Times the reranker failed and unranked order was used",
		},
	)

	c.suggestionParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_parses_total",
			Help:      "Suggestion parse outcomes (parsed, fallback, default, error)",
		},
		[]string{"outcome"},
	)

	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"model", "status"},
	)

	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusBucket(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordChatRequest records one pipeline run.
func (c *Collector) RecordChatRequest(queryClass, status string, duration time.Duration) {
	c.chatRequestsTotal.WithLabelValues(queryClass, status).Inc()
	c.pipelineDuration.WithLabelValues(queryClass).Observe(duration.Seconds())
}

// RecordRetrievalHits records how many hits a strategy admitted into context.
func (c *Collector) RecordRetrievalHits(strategy string, hits int) {
	c.retrievalHits.WithLabelValues(strategy).Observe(float64(hits))
}

// RecordRerankFallback records a rerank failure recovered with unranked order.
func (c *Collector) RecordRerankFallback() {
	c.rerankFallbacksTotal.Inc()
}

// RecordSuggestionParse records a suggestion parse outcome.
func (c *Collector) RecordSuggestionParse(outcome string) {
	c.suggestionParsesTotal.WithLabelValues(outcome).Inc()
}

// RecordLLMRequest records one generator call.
func (c *Collector) RecordLLMRequest(model, status string, duration time.Duration) {
	c.llmRequestsTotal.WithLabelValues(model, status).Inc()
	c.llmRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

func statusBucket(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
