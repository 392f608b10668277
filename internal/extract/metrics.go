package extract

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/streamlens/streamlens/internal/platform"
)

var (
	cascadeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "streamlens_cascade_duration_seconds",
		Help:    "Duration of extraction cascades in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 10), // 50ms .. ~25.6s
	}, []string{"platform", "outcome"})

	strategyRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamlens_strategy_runs_total",
		Help: "Number of strategy invocations by strategy name and result",
	}, []string{"strategy", "result"})
)

func recordCascade(tag platform.Tag, outcome Outcome, elapsed time.Duration) {
	cascadeDuration.WithLabelValues(string(tag), string(outcome)).Observe(elapsed.Seconds())
}

func recordStrategy(name string, won bool) {
	result := "lost"
	if won {
		result = "won"
	}
	strategyRunsTotal.WithLabelValues(name, result).Inc()
}
