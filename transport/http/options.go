package http

// MetricsOption /metrics 端点
type MetricsOption struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

func (m *MetricsOption) SetDefaults() {
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// HealthOption 健康检查端点
type HealthOption struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

func (h *HealthOption) SetDefaults() {
	if h.Path == "" {
		h.Path = "/health"
	}
}
