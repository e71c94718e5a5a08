package session

import (
	"github.com/jonboulle/clockwork"

	"github.com/heattrack/sessionkit/log"
)

// Option Manager 选项函数
type Option func(*Manager)

// WithClock 替换时钟，测试中传入 clockwork.FakeClock
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNavigator 设置会话结束时的跳转目标
func WithNavigator(navigator Navigator) Option {
	return func(m *Manager) {
		m.navigator = navigator
	}
}

// WithActivitySource 设置交互信号来源
func WithActivitySource(source ActivitySource) Option {
	return func(m *Manager) {
		m.source = source
	}
}

// WithMetrics 设置指标
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithPoolSize 设置后台任务协程池大小
func WithPoolSize(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.poolSize = size
		}
	}
}

// WithEventSink 设置生命周期事件接收方
func WithEventSink(sink EventSink) Option {
	return func(m *Manager) {
		m.sink = sink
	}
}
