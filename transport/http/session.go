package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heattrack/sessionkit/errors"
	"github.com/heattrack/sessionkit/session"
)

// SessionView 状态服务需要的会话操作，*session.Manager 即满足
type SessionView interface {
	State(ctx context.Context) session.State
	User(ctx context.Context) map[string]any
	TimeSinceActivity() time.Duration
	RecordActivity()
	Logout(ctx context.Context) bool
}

var _ SessionView = (*session.Manager)(nil)

// SessionStatus GET /session 响应
type SessionStatus struct {
	State       string         `json:"state"`
	LoggedIn    bool           `json:"loggedIn"`
	IdleSeconds float64        `json:"idleSeconds"`
	User        map[string]any `json:"user,omitempty"`
}

type activityRequest struct {
	Signal session.Signal `json:"signal" binding:"required"`
}

// RegisterSession 挂载会话路由：
// GET /session、POST /session/activity、POST /session/logout
func RegisterSession(r gin.IRouter, view SessionView) {
	g := r.Group("/session")

	g.GET("", func(c *gin.Context) {
		ctx := c.Request.Context()
		state := view.State(ctx)
		status := SessionStatus{
			State:       state.String(),
			LoggedIn:    state == session.StateActive || state == session.StateIdle,
			IdleSeconds: view.TimeSinceActivity().Seconds(),
		}
		if status.LoggedIn {
			status.User = view.User(ctx)
		}
		GinJSON(c, status)
	})

	g.POST("/activity", func(c *gin.Context) {
		var req activityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			GinError(c, errors.BadRequest("invalid activity payload").WithCause(err))
			return
		}
		if !isSignal(req.Signal) {
			GinError(c, errors.BadRequest("unknown signal %q", req.Signal))
			return
		}
		view.RecordActivity()
		c.Status(http.StatusNoContent)
	})

	g.POST("/logout", func(c *gin.Context) {
		GinJSON(c, gin.H{"loggedOut": view.Logout(c.Request.Context())})
	})
}

func isSignal(s session.Signal) bool {
	for _, known := range session.Signals {
		if s == known {
			return true
		}
	}
	return false
}
