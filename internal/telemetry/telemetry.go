// Package telemetry exposes request, expert and gateway metrics over the
// Prometheus registry served at /metrics, plus tracer handles for the
// orchestration pipeline.
package telemetry

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/polymath-ai/polymath/config"
)

// Collectors live at package level so constructing more than one Telemetry
// (as tests do) never double-registers on the default registry.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymath_requests_total",
		Help: "Chat requests processed, by outcome and path.",
	}, []string{"path", "outcome"})
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymath_request_duration_seconds",
		Help:    "End-to-end chat request duration.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	expertRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymath_expert_runs_total",
		Help: "Expert invocations, by domain and outcome.",
	}, []string{"domain", "outcome"})
	llmCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymath_llm_calls_total",
		Help: "Completion backend calls, by outcome.",
	}, []string{"outcome"})
	llmTokens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymath_llm_tokens_total",
		Help: "Total tokens reported by the completion backend.",
	})
	searchCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymath_search_calls_total",
		Help: "Web search calls, by outcome.",
	}, []string{"outcome"})
	sourcesProbed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymath_source_probes_total",
		Help: "Source URL existence probes, by verdict.",
	}, []string{"verdict"})
)

// Telemetry provides monitoring and token tracking for the service.
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger
}

// New creates a telemetry instance backed by the shared collectors.
func New(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
	}
}

// Tracer returns the tracer used by orchestration spans.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

func outcomeLabel(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// RecordRequest records one finished chat request.
func (t *Telemetry) RecordRequest(path string, success bool, d time.Duration) {
	if t == nil || !t.config.Enabled {
		return
	}
	requestsTotal.WithLabelValues(path, outcomeLabel(success)).Inc()
	requestDuration.Observe(d.Seconds())
}

// RecordExpertRun records a single expert invocation.
func (t *Telemetry) RecordExpertRun(domain string, success bool) {
	if t == nil || !t.config.Enabled {
		return
	}
	expertRuns.WithLabelValues(domain, outcomeLabel(success)).Inc()
}

// RecordLLMCall records one completion call and its token usage.
func (t *Telemetry) RecordLLMCall(success bool, tokens int) {
	if t == nil || !t.config.Enabled {
		return
	}
	llmCalls.WithLabelValues(outcomeLabel(success)).Inc()
	if t.config.TokenTracking && tokens > 0 {
		llmTokens.Add(float64(tokens))
	}
}

// RecordSearch records one web search call.
func (t *Telemetry) RecordSearch(success bool) {
	if t == nil || !t.config.Enabled {
		return
	}
	searchCalls.WithLabelValues(outcomeLabel(success)).Inc()
}

// RecordSourceProbe records a URL existence probe verdict.
func (t *Telemetry) RecordSourceProbe(valid bool) {
	if t == nil || !t.config.Enabled {
		return
	}
	verdict := "exists"
	if !valid {
		verdict = "missing"
	}
	sourcesProbed.WithLabelValues(verdict).Inc()
}
