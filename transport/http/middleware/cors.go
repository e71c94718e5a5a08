package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CorsConfig 跨域配置，仪表盘页面与状态接口不同源时使用
type CorsConfig struct {
	// AllowOrigins 支持 "*" 和 "*.example.com"
	AllowOrigins []string `json:"allowOrigins" mapstructure:"allowOrigins"`
	AllowMethods []string `json:"allowMethods" mapstructure:"allowMethods"`
	AllowHeaders []string `json:"allowHeaders" mapstructure:"allowHeaders"`
	MaxAge       int      `json:"maxAge" mapstructure:"maxAge"`
}

func DefaultCorsConfig() CorsConfig {
	return CorsConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
		MaxAge:       43200,
	}
}

// Cors 未配置 AllowOrigins 时不添加任何跨域头
func Cors(cfg CorsConfig) gin.HandlerFunc {
	def := DefaultCorsConfig()
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = def.AllowMethods
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = def.AllowHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	allowAll := slices.Contains(cfg.AllowOrigins, "*")
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !(allowAll || originAllowed(origin, cfg.AllowOrigins)) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		if allowAll {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(a, "*"); ok && strings.HasPrefix(suffix, ".") && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
