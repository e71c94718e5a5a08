package session

import (
	"context"
	"time"
)

// tickFunc 单次检查，返回 false 时循环退出
type tickFunc func(ctx context.Context, epoch uint64) bool

// runLoop 按固定间隔执行 tick，ctx 取消或 epoch 变化后退出
func (m *Manager) runLoop(ctx context.Context, epoch uint64, interval time.Duration, tick tickFunc) {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil || m.epoch.Load() != epoch {
				return
			}
			if !tick(ctx, epoch) {
				return
			}
		}
	}
}
