package session

import (
	"context"
)

// Expire 结束会话：停止循环、移除监听、清除凭据并通知 Navigator。
// 幂等，只有真正完成状态切换的那次调用返回 true。
func (m *Manager) Expire(reason Reason) bool {
	return m.expire(context.Background(), reason, 0, false)
}

// expireIfCurrent 只在 epoch 未变化时过期，避免旧循环结束新会话
func (m *Manager) expireIfCurrent(epoch uint64, reason Reason) bool {
	return m.expire(context.Background(), reason, epoch, true)
}

func (m *Manager) expire(ctx context.Context, reason Reason, epoch uint64, checkEpoch bool) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.RequestTimeout)
	defer cancel()

	m.mu.Lock()
	if m.expired || (checkEpoch && m.epoch.Load() != epoch) || !m.activeLocked(ctx) {
		m.mu.Unlock()
		return false
	}
	m.expired = true
	m.lastReason = reason
	m.stopLocked()
	err := m.creds.clear(ctx)
	m.mu.Unlock()

	logger := m.log()
	if err != nil {
		logger.Error().Err(err).Msg("clear credentials failed")
	}
	m.metrics.expiration(reason)
	logger.Info().Str("reason", reason.String()).Msg("session ended")
	m.emit(ctx, EventEnded, reason)

	m.navigator.Navigate(reason)
	return true
}

// activeLocked 循环在运行或存储中仍有 token；从未登录的 Manager 没有可结束的会话
func (m *Manager) activeLocked(ctx context.Context) bool {
	if m.running {
		return true
	}
	token, err := m.creds.token(ctx)
	return err != nil || token != ""
}
