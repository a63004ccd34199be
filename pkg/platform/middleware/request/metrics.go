package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observes BFF route latency. Routes are chi patterns, never raw
// paths.
type Metrics struct {
	routeLatency *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		routeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tausepro_console_route_duration_seconds",
			Help:    "Console route latency in seconds, by chi route pattern",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15},
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(route string, seconds float64) {
	if m == nil {
		return
	}
	m.routeLatency.WithLabelValues(route).Observe(seconds)
}
