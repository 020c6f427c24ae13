package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequestsTotal, httpRequestDurationMs)
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"method", "route"},
	)
)

func ObserveHTTPRequest(method, route string, code int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(norm(method), route, strconv.Itoa(code)).Inc()
	httpRequestDurationMs.WithLabelValues(norm(method), route).Observe(float64(elapsed.Milliseconds()))
}
