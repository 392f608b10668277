package resolve

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/streamlens/streamlens/internal/extract"
	"github.com/streamlens/streamlens/internal/platform"
)

var resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamlens_resolutions_total",
	Help: "Completed resolutions by platform, outcome and cache hit.",
}, []string{"platform", "outcome", "cached"})

func recordResolution(tag platform.Tag, outcome extract.Outcome, cached bool) {
	resolutions.WithLabelValues(string(tag), string(outcome), strconv.FormatBool(cached)).Inc()
}
