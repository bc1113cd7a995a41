package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint", "status"},
	)
	pagesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_generated_total",
			Help: "Pages generated, by intent and content source.",
		},
		[]string{"intent", "source"},
	)
	synthesisFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthesis_fallbacks_total",
			Help: "Content synthesis runs that fell back to templated content.",
		},
		[]string{"intent", "reason"},
	)
	publishPropagation = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_propagation_total",
			Help: "Per-page publish propagation outcomes.",
		},
		[]string{"stage", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(pagesGenerated)
	prometheus.MustRegister(synthesisFallbacks)
	prometheus.MustRegister(publishPropagation)
}

// RecordRequest records one HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func RecordPageGenerated(intent, source string) {
	pagesGenerated.WithLabelValues(intent, source).Inc()
}

func RecordSynthesisFallback(intent, reason string) {
	synthesisFallbacks.WithLabelValues(intent, reason).Inc()
}

// RecordPropagation counts one upload or purge outcome.
func RecordPropagation(stage string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	publishPropagation.WithLabelValues(stage, result).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
