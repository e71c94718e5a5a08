package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heattrack/sessionkit/log"
)

// LoggerConfig 访问日志配置
type LoggerConfig struct {
	Logger *log.Logger
	// SkipPaths 不记录的路径
	SkipPaths []string
	// Filter 返回 true 时跳过
	Filter func(c *gin.Context) bool
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Logger:    log.G,
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// GinLogger 默认访问日志中间件
func GinLogger() gin.HandlerFunc {
	return GinLoggerWithConfig(DefaultLoggerConfig())
}

// GinLoggerWithConfig 按配置创建访问日志中间件。
// 不记录请求头和请求体，Authorization 不会进入日志。
func GinLoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = log.G
	}

	return func(c *gin.Context) {
		if shouldSkipLogging(c, config) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		event := logger.Info().
			Int("status", c.Writer.Status()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if requestID := c.Request.Header.Get("X-Request-Id"); requestID != "" {
			event = event.Str("request_id", requestID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.Send()
	}
}

func shouldSkipLogging(c *gin.Context, config LoggerConfig) bool {
	if config.Filter != nil {
		return config.Filter(c)
	}
	return slices.Contains(config.SkipPaths, c.Request.URL.Path)
}
