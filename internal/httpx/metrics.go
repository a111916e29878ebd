package httpx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "biomcp",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Upstream HTTP requests by logical API and status class.",
	}, []string{"api", "status"})

	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "biomcp",
		Subsystem: "http",
		Name:      "cache_hits_total",
		Help:      "Responses served from the local cache.",
	}, []string{"api"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "biomcp",
		Subsystem: "http",
		Name:      "retries_total",
		Help:      "Retried upstream attempts.",
	}, []string{"api"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "biomcp",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Upstream request latency by logical API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"api"})
)

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "error"
	}
}
