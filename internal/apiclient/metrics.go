package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tausepro_apiclient_requests_total",
		Help: "API requests sent by the console, by method and status",
	}, []string{"method", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tausepro_apiclient_request_duration_seconds",
		Help:    "Latency of API requests sent by the console",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tausepro_apiclient_token_refresh_total",
		Help: "Token refresh attempts by outcome",
	}, []string{"outcome"})
	circuitOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tausepro_apiclient_circuit_open",
		Help: "1 while the API circuit breaker refuses requests",
	})
)

func observe(method, status string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, status).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}
