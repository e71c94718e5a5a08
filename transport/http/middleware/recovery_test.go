package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/heattrack/sessionkit/log"
)

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(Recovery(RecoveryConfig{Logger: log.NewWriter(&buf)}))
	r.GET("/session", func(c *gin.Context) { panic("store exploded") })

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "store exploded")
	assert.Contains(t, buf.String(), `"path":"/session"`)
	assert.NotContains(t, buf.String(), "secret-token")
	assert.NotContains(t, buf.String(), `"stack"`)
}

func TestCors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Cors(CorsConfig{AllowOrigins: []string{"http://dashboard.local", "*.atelier.lan"}}))
	r.GET("/session", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		origin string
		want   string
	}{
		{"http://dashboard.local", "http://dashboard.local"},
		{"http://four-3.atelier.lan", "http://four-3.atelier.lan"},
		{"http://evil.example", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tc.want, w.Header().Get("Access-Control-Allow-Origin"), tc.origin)
	}

	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
