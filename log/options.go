package log

import (
	"github.com/rs/zerolog"

	"github.com/heattrack/sessionkit/log/desensitize"
)

// Option Logger 选项函数
type Option func(*Logger)

// WithLevel 设置日志级别
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.Level(level)
	}
}

// WithCaller 输出调用位置
func WithCaller() Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Caller().Logger()
	}
}

// WithDesensitize 设置脱敏钩子
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(l *Logger) {
		l.desensitizeHook = hook
	}
}

// WithField 给所有日志附加固定字段
func WithField(key, value string) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Str(key, value).Logger()
	}
}
