package log

import (
	"github.com/rs/zerolog"

	"github.com/heattrack/sessionkit/log/desensitize"
)

// G 全局日志实例，默认带内置脱敏规则
var G *Logger

func init() {
	G = New(WithDesensitize(desensitize.NewBuiltinHook()))
}

// SetGlobalLogger 替换全局日志实例
func SetGlobalLogger(logger *Logger) {
	if logger != nil {
		G = logger
	}
}

// SetGlobalLevel 设置全局日志级别
func SetGlobalLevel(level zerolog.Level) {
	G.Logger = G.Logger.Level(level)
}

// ParseLevel 解析级别字符串，无法识别时返回 info
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

func Debug() *zerolog.Event {
	return G.Debug()
}

func Info() *zerolog.Event {
	return G.Info()
}

func Warn() *zerolog.Event {
	return G.Warn()
}

// Error 带堆栈
func Error() *zerolog.Event {
	return G.Error().Stack()
}

func Fatal() *zerolog.Event {
	return G.Fatal().Stack()
}
