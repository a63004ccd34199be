package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for console sessions.
type Metrics struct {
	Logins        *prometheus.CounterVec
	Logouts       *prometheus.CounterVec
	UserRefreshes *prometheus.CounterVec
	LiveSessions  prometheus.Gauge
}

// New registers the collectors. Call it once per process.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tausepro_auth_logins_total",
			Help: "Console login attempts by realm and outcome",
		}, []string{"realm", "outcome"}),
		Logouts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tausepro_auth_logouts_total",
			Help: "Console logouts by realm and reason",
		}, []string{"realm", "reason"}),
		UserRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tausepro_auth_user_refresh_total",
			Help: "Profile refreshes by realm and outcome",
		}, []string{"realm", "outcome"}),
		LiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tausepro_console_live_sessions",
			Help: "Console visitors currently held in memory",
		}),
	}
}

func (m *Metrics) IncLogin(realm, outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(realm, outcome).Inc()
}

func (m *Metrics) IncLogout(realm, reason string) {
	if m == nil {
		return
	}
	m.Logouts.WithLabelValues(realm, reason).Inc()
}

func (m *Metrics) IncUserRefresh(realm, outcome string) {
	if m == nil {
		return
	}
	m.UserRefreshes.WithLabelValues(realm, outcome).Inc()
}

func (m *Metrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.LiveSessions.Set(float64(n))
}
