package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "viral",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "viral",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "viral",
		Name:      "provider_requests_total",
		Help:      "Total requests to platform providers by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "viral",
		Name:      "provider_request_duration_seconds",
		Help:      "Platform provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"provider"})

	ProviderAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "viral",
		Name:      "provider_available",
		Help:      "Whether a provider's last outcome allows serving (1) or it hit a quota/auth failure (0).",
	}, []string{"provider"})

	QueriesPlannedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "viral",
		Name:      "queries_planned_total",
		Help:      "Total fan-out queries planned by query mode.",
	}, []string{"mode"})

	FilteredOutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "viral",
		Name:      "filtered_out_total",
		Help:      "Total candidates removed by each filter stage.",
	}, []string{"stage"})

	FallbackExpansionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "viral",
		Name:      "fallback_expansions_total",
		Help:      "Total requests that triggered the one-shot fallback keyword expansion.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderAvailable,
		QueriesPlannedTotal,
		FilteredOutTotal,
		FallbackExpansionsTotal,
	)
}
