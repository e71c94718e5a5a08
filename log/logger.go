package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/heattrack/sessionkit/log/desensitize"
	"github.com/heattrack/sessionkit/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	desensitizeHook *desensitize.Hook
	closer          io.Closer
}

// Close 释放文件 writer
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Child 派生带固定字段的子 Logger，共享底层 writer
func (l *Logger) Child(key, value string) *Logger {
	return &Logger{
		Logger:          l.Logger.With().Str(key, value).Logger(),
		desensitizeHook: l.desensitizeHook,
	}
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// newLogger 先收集选项，脱敏钩子存在时再包装 writer
func newLogger(w io.Writer, opts ...Option) *Logger {
	probe := &Logger{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(probe)
	}

	if probe.desensitizeHook != nil {
		w = desensitize.NewWriter(w, probe.desensitizeHook)
	}

	logger := &Logger{Logger: zerolog.New(w).With().Timestamp().Logger()}
	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// New 输出到控制台
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWriter 输出到任意 writer，JSON 格式
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// NewFile 输出到轮转文件
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := fileWriter(c)
	if err != nil {
		return nil, err
	}

	logger := newLogger(fw, opts...)
	if closer, ok := fw.(io.Closer); ok {
		logger.closer = closer
	}
	return logger, nil
}

// NewMulti 同时输出到文件和控制台
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := fileWriter(c)
	if err != nil {
		return nil, err
	}

	logger := newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	if closer, ok := fw.(io.Closer); ok {
		logger.closer = closer
	}
	return logger, nil
}

func fileWriter(c FileConfig) (io.Writer, error) {
	c.SetDefaults()
	wc, err := c.toWriterConfig()
	if err != nil {
		return nil, err
	}
	w, err := writer.File(wc)
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}
	return w, nil
}
