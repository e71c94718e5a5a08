package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/transport"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultName = "status"
	defaultAddr = "127.0.0.1:9464"
)

// Meta 服务元数据
type Meta struct {
	Name string
}

// Server 本地状态服务
type Server struct {
	meta     Meta
	metrics  MetricsOption
	health   HealthOption
	gatherer prometheus.Gatherer
	logger   *log.Logger
	server   *http.Server
}

type Option func(*Server)

func WithMeta(meta Meta) Option {
	return func(s *Server) {
		s.meta = meta
	}
}

// WithMetrics 在 Path 上暴露 gatherer 中的指标
func WithMetrics(metrics MetricsOption, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		metrics.SetDefaults()
		s.metrics = metrics
		s.gatherer = gatherer
	}
}

func WithHealth(health HealthOption) Option {
	return func(s *Server) {
		health.SetDefaults()
		s.health = health
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer handler 为 *gin.Engine 时挂载指标和健康检查路由
func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		meta:   Meta{Name: defaultName},
		logger: log.G,
		server: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if r, ok := handler.(*gin.Engine); ok {
		s.mount(r)
	}
	return s
}

func (s *Server) Run() error {
	if !transport.ValidateAddress(s.server.Addr) {
		s.logger.Warn().Msgf("invalid address %q, using default address: %s", s.server.Addr, defaultAddr)
		s.server.Addr = defaultAddr
	}
	s.logger.Info().Msgf("%s server listening on %s", s.meta.Name, s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler 底层 handler，测试中配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) mount(r *gin.Engine) {
	if s.metrics.Enabled && s.gatherer != nil {
		r.GET(s.metrics.Path, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}
	if s.health.Enabled {
		r.GET(s.health.Path, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}
