package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tausepro_admin_fetch_total",
		Help: "Admin store fetches by resource and outcome",
	}, []string{"resource", "outcome"})
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tausepro_admin_mutations_total",
		Help: "Admin store mutations by resource, action and outcome",
	}, []string{"resource", "action", "outcome"})
)

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
