package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the process registry exposed at /metrics.
var Registry = prometheus.NewRegistry()

var (
	runsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parttimepal_runs_started_total",
		Help: "Pipeline runs started, by kind",
	}, []string{"kind"})

	runsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parttimepal_runs_finished_total",
		Help: "Pipeline runs finished, by kind and outcome",
	}, []string{"kind", "outcome"})

	runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parttimepal_run_duration_seconds",
		Help:    "Pipeline run duration in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"kind"})

	providerCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parttimepal_provider_calls_total",
		Help: "Analysis provider calls, by call and outcome",
	}, []string{"call", "outcome"})

	providerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parttimepal_provider_latency_seconds",
		Help:    "Analysis provider call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"call"})

	fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parttimepal_fallbacks_total",
		Help: "Resilient sub-calls that returned their default payload",
	}, []string{"call"})

	searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parttimepal_search_results",
		Help:    "Parsed job listings per search",
		Buckets: []float64{0, 1, 3, 5, 8, 10, 12, 15, 20},
	})

	staleResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parttimepal_stale_results_total",
		Help: "Completions discarded because a newer run superseded them",
	}, []string{"kind"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		runsStarted,
		runsFinished,
		runDuration,
		providerCalls,
		providerLatency,
		fallbacks,
		searchResults,
		staleResults,
	)
}

// RunStarted counts a pipeline run of the given kind.
func RunStarted(kind string) {
	runsStarted.WithLabelValues(kind).Inc()
}

// RunFinished records the outcome and duration of a run.
func RunFinished(kind, outcome string, d time.Duration) {
	runsFinished.WithLabelValues(kind, outcome).Inc()
	if d < 0 {
		d = 0
	}
	runDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ProviderCall records one provider round trip.
func ProviderCall(call, outcome string, d time.Duration) {
	providerCalls.WithLabelValues(call, outcome).Inc()
	providerLatency.WithLabelValues(call).Observe(d.Seconds())
}

// Fallback counts a resilient call that degraded to its default.
func Fallback(call string) {
	fallbacks.WithLabelValues(call).Inc()
}

// ObserveSearchResults records how many listings a search produced.
func ObserveSearchResults(n int) {
	searchResults.Observe(float64(n))
}

// StaleResult counts a discarded stale completion.
func StaleResult(kind string) {
	staleResults.WithLabelValues(kind).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
