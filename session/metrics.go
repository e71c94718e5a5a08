package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 刷新与心跳结果标签
const (
	ResultSuccess  = "success"
	ResultSkipped  = "skipped"
	ResultDenied   = "denied"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
	ResultStale    = "stale"
)

// Metrics 会话指标
type Metrics struct {
	Refresh     *prometheus.CounterVec
	Heartbeat   *prometheus.CounterVec
	Expirations *prometheus.CounterVec
	IdleSeconds prometheus.Gauge
}

// NewMetrics 在 reg 上注册指标，reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Refresh: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_refresh_total",
			Help: "Token refresh attempts by result",
		}, []string{"result"}),
		Heartbeat: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_heartbeat_total",
			Help: "Heartbeat ticks by result",
		}, []string{"result"}),
		Expirations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_expirations_total",
			Help: "Session terminations by reason",
		}, []string{"reason"}),
		IdleSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "session_idle_seconds",
			Help: "Seconds since the last recorded user activity",
		}),
	}
}

func (m *Metrics) refresh(result string) {
	if m != nil {
		m.Refresh.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) heartbeat(result string) {
	if m != nil {
		m.Heartbeat.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) expiration(reason Reason) {
	if m != nil {
		m.Expirations.WithLabelValues(reason.String()).Inc()
	}
}

func (m *Metrics) idle(seconds float64) {
	if m != nil {
		m.IdleSeconds.Set(seconds)
	}
}
