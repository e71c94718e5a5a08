package metrics

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prometheus 进程级指标注册表
type Prometheus struct {
	registry *prometheus.Registry
}

type Option func(*Prometheus)

// WithGoCollector 注册 Go 运行时指标
func WithGoCollector() Option {
	return func(p *Prometheus) {
		p.registry.MustRegister(collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/sched/.*")}),
		))
	}
}

// WithProcessCollector 注册进程指标
func WithProcessCollector() Option {
	return func(p *Prometheus) {
		p.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

// WithBuildInfoCollector 注册构建信息
func WithBuildInfoCollector() Option {
	return func(p *Prometheus) {
		p.registry.MustRegister(collectors.NewBuildInfoCollector())
	}
}

func New(opts ...Option) *Prometheus {
	p := &Prometheus{registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry 供 session.NewMetrics 注册，也供 /metrics 读取
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
