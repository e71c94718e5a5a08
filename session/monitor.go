package session

import (
	"context"
	"time"

	"github.com/heattrack/sessionkit/core/auth/jwt"
)

// checkSession 会话检查循环的一次 tick。
// 顺序：无 token 停止；空闲超时过期；token 无效或过期则过期；
// 临近过期且用户仍活跃时在后台刷新。
func (m *Manager) checkSession(ctx context.Context, epoch uint64) bool {
	token, err := m.creds.token(ctx)
	if err != nil {
		m.log().Warn().Err(err).Msg("read token failed, retrying next tick")
		return true
	}
	if token == "" {
		m.log().Debug().Msg("no token, monitor stopping")
		m.stopIfCurrent(epoch)
		return false
	}

	idle := m.activity.TimeSinceActivity()
	m.metrics.idle(idle.Seconds())

	if idle >= m.config.InactivityTimeout {
		m.expireIfCurrent(epoch, ReasonInactivityTimeout)
		return false
	}

	payload, err := jwt.Decode(token)
	if err != nil {
		m.log().Warn().Err(err).Msg("stored token unreadable")
		m.expireIfCurrent(epoch, ReasonTokenInvalid)
		return false
	}

	now := m.clock.Now()
	remaining := payload.Remaining(now)
	if remaining <= 0 {
		m.expireIfCurrent(epoch, ReasonSessionExpired)
		return false
	}

	if remaining < m.config.RefreshThreshold && idle < m.config.proactiveIdleLimit() {
		m.log().Debug().Dur("remaining", remaining).Dur("idle", idle).Msg("token close to expiry, refreshing")
		m.refreshInBackground()
	}
	return true
}

// refreshInBackground 提交到协程池，不等待结果
func (m *Manager) refreshInBackground() {
	err := m.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.RequestTimeout+time.Second)
		defer cancel()

		if _, err := m.Refresh(ctx); err != nil {
			m.log().Warn().Err(err).Msg("proactive refresh failed")
		}
	})
	if err != nil {
		m.log().Warn().Err(err).Msg("proactive refresh not scheduled")
	}
}
