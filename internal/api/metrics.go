package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamlens_http_requests_total",
		Help: "Handled HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "streamlens_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	streamBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamlens_stream_bytes_total",
		Help: "Bytes relayed to clients through /stream.",
	})
)

func recordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func recordStreamBytes(n int64) {
	streamBytes.Add(float64(n))
}
