package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heattrack/sessionkit/log"
)

// RecoveryConfig Recovery 中间件配置
type RecoveryConfig struct {
	StackTrace bool
	Logger     *log.Logger
}

// Recovery 捕获 panic 并返回 500；只记录方法和路径，不转储请求头
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	cfg := RecoveryConfig{StackTrace: true}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if isBrokenPipe(rec) {
				cfg.Logger.Warn().
					Str("error", fmt.Sprint(rec)).
					Str("path", c.Request.URL.Path).
					Msg("broken pipe")
				_ = c.Error(fmt.Errorf("%v", rec))
				c.Abort()
				return
			}

			event := cfg.Logger.Error().
				Str("error", fmt.Sprint(rec)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path)
			if cfg.StackTrace {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

func isBrokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
