package session

import (
	"context"

	"github.com/heattrack/sessionkit/errors"
)

// sendHeartbeat 心跳循环的一次 tick。
// 空闲比例达到 HeartbeatInactivityRatio 时不发请求，让空闲会话自然过期。
func (m *Manager) sendHeartbeat(ctx context.Context, epoch uint64) bool {
	token, err := m.creds.token(ctx)
	if err != nil || token == "" {
		return true
	}

	ratio := m.config.idleRatio(m.activity.TimeSinceActivity())
	if ratio >= m.config.HeartbeatInactivityRatio {
		m.metrics.heartbeat(ResultSkipped)
		m.log().Debug().Float64("idle_ratio", ratio).Msg("heartbeat skipped, user idle")
		return true
	}

	// Stop 不中断进行中的请求，结果按 epoch 丢弃
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.RequestTimeout)
	defer cancel()
	_, err = m.client.Me(reqCtx, token)

	if m.epoch.Load() != epoch {
		m.metrics.heartbeat(ResultStale)
		return false
	}

	switch {
	case err == nil:
		m.metrics.heartbeat(ResultSuccess)
	case errors.IsUnauthorized(err):
		m.metrics.heartbeat(ResultRejected)
		m.expireIfCurrent(epoch, ReasonSessionExpired)
		return false
	default:
		m.metrics.heartbeat(ResultFailed)
		m.log().Warn().Err(err).Msg("heartbeat failed")
	}
	return true
}
