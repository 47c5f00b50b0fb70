package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	GradingsTotal    *prometheus.CounterVec
	GradingDuration  prometheus.Histogram
	GradingsInFlight prometheus.Gauge

	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec

	LLMRequestsTotal *prometheus.CounterVec
	LLMTokensTotal   *prometheus.CounterVec
	LLMCostUSD       prometheus.Counter

	FinalScores prometheus.Histogram

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all collectors on the given registerer. Tests pass
// their own registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		GradingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_gradings_total",
				Help: "Total number of submissions graded",
			},
			[]string{"status"},
		),
		GradingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autograder_grading_duration_seconds",
				Help:    "End-to-end grading duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		GradingsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "autograder_gradings_in_flight",
				Help: "Number of submissions currently being graded",
			},
		),

		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_evaluations_total",
				Help: "Total number of criterion evaluations",
			},
			[]string{"criterion", "status"},
		),
		EvaluationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autograder_evaluation_duration_seconds",
				Help:    "Criterion evaluation duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"criterion"},
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMTokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_llm_tokens_total",
				Help: "Total LLM tokens consumed",
			},
			[]string{"provider", "direction"},
		),
		LLMCostUSD: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "autograder_llm_cost_usd_total",
				Help: "Cumulative LLM spend in US dollars",
			},
		),

		FinalScores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autograder_final_scores",
				Help:    "Distribution of final grades",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "autograder_cache_hits_total",
				Help: "Total number of document cache hits",
			},
		),
		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "autograder_cache_misses_total",
				Help: "Total number of document cache misses",
			},
		),

		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"provider"},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordGrading(status string, duration time.Duration) {
	m.GradingsTotal.WithLabelValues(status).Inc()
	m.GradingDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordEvaluation(criterion, status string, duration time.Duration) {
	m.EvaluationsTotal.WithLabelValues(criterion, status).Inc()
	m.EvaluationDuration.WithLabelValues(criterion).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMRequest(provider, status string) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordLLMTokens(provider string, input, output int) {
	m.LLMTokensTotal.WithLabelValues(provider, "input").Add(float64(input))
	m.LLMTokensTotal.WithLabelValues(provider, "output").Add(float64(output))
}

func (m *Metrics) RecordLLMCost(usd float64) {
	m.LLMCostUSD.Add(usd)
}

func (m *Metrics) RecordFinalScore(score float64) {
	m.FinalScores.Observe(score)
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordRateLimitHit(provider string) {
	m.RateLimitHitsTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncGradingsInFlight() {
	m.GradingsInFlight.Inc()
}

func (m *Metrics) DecGradingsInFlight() {
	m.GradingsInFlight.Dec()
}
