package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var relayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamlens_relay_requests_total",
	Help: "Relay fetches by mode and payload kind.",
}, []string{"mode", "kind"})

func recordRelay(mode Mode, kind string) {
	relayRequests.WithLabelValues(string(mode), kind).Inc()
}
