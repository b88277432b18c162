package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exported on /metrics.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeflow",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resumeflow",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	creditSpends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeflow",
		Name:      "credit_spend_total",
		Help:      "Credit gate outcomes (spent, insufficient, error, refunded).",
	}, []string{"outcome"})

	completions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeflow",
		Name:      "completion_requests_total",
		Help:      "Completion provider calls by outcome.",
	}, []string{"outcome"})

	completionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "resumeflow",
		Name:      "completion_duration_seconds",
		Help:      "Completion provider latency.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
	})

	grants = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeflow",
		Name:      "credit_grants_total",
		Help:      "Payment top-ups by source and result (applied, duplicate).",
	}, []string{"source", "result"})

	panics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeflow",
		Name:      "http_panics_total",
		Help:      "Handler panics recovered, by route.",
	}, []string{"route"})
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		creditSpends,
		completions,
		completionLatency,
		grants,
		panics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records a finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncCreditSpend counts a credit gate outcome.
func IncCreditSpend(outcome string) {
	creditSpends.WithLabelValues(outcome).Inc()
}

// ObserveCompletion records a provider call.
func ObserveCompletion(outcome string, elapsed time.Duration) {
	completions.WithLabelValues(outcome).Inc()
	completionLatency.Observe(elapsed.Seconds())
}

// IncGrant counts a payment top-up attempt.
func IncGrant(source, result string) {
	grants.WithLabelValues(source, result).Inc()
}

// IncPanic counts a recovered handler panic.
func IncPanic(route string) {
	if route == "" {
		route = "unmatched"
	}
	panics.WithLabelValues(route).Inc()
}
