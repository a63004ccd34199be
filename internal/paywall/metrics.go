package paywall

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tausepro_paywall_blocked_total",
		Help: "Feature checks answered as blocked, by feature and plan",
	}, []string{"feature", "plan"})
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tausepro_paywall_usage_refresh_total",
		Help: "Usage refreshes by outcome",
	}, []string{"outcome"})
	workerRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tausepro_paywall_worker_run_duration_seconds",
		Help:    "Duration of one usage refresh sweep over live sessions",
		Buckets: prometheus.DefBuckets,
	})
)
