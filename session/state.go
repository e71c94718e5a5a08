package session

import (
	"context"

	"github.com/heattrack/sessionkit/core/auth/jwt"
)

// State 会话状态
type State int

const (
	StateLoggedOut State = iota
	StateActive
	StateIdle
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateExpired:
		return "expired"
	default:
		return "logged_out"
	}
}

// State 当前状态；空闲比例达到心跳阈值即视为 Idle
func (m *Manager) State(ctx context.Context) State {
	m.mu.Lock()
	expired, reason := m.expired, m.lastReason
	m.mu.Unlock()

	token := m.Token(ctx)
	if token == "" {
		if expired && reason != ReasonLoggedOut {
			return StateExpired
		}
		return StateLoggedOut
	}
	if jwt.IsExpired(token, m.clock.Now()) {
		return StateExpired
	}
	if m.config.idleRatio(m.activity.TimeSinceActivity()) >= m.config.HeartbeatInactivityRatio {
		return StateIdle
	}
	return StateActive
}
