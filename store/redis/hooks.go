package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heattrack/sessionkit/log"
)

// DebugHook 记录命令耗时与慢查询；只记录命令名和 key，值里是凭据
type DebugHook struct {
	logger          *log.Logger
	slowQueryThresh time.Duration
}

func NewDebugHook(logger *log.Logger, slowQueryThresh time.Duration) *DebugHook {
	return &DebugHook{logger: logger, slowQueryThresh: slowQueryThresh}
}

func (h *DebugHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error().Str("addr", addr).Dur("duration", time.Since(start)).Err(err).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *DebugHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(cmd, time.Since(start), err)
		return err
	}
}

func (h *DebugHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(start)
		for _, cmd := range cmds {
			h.record(cmd, duration, cmd.Err())
		}
		return err
	}
}

func (h *DebugHook) record(cmd redis.Cmder, duration time.Duration, err error) {
	event := h.logger.Debug()
	switch {
	case err != nil && !errors.Is(err, redis.Nil):
		event = h.logger.Warn().Err(err)
	case h.slowQueryThresh > 0 && duration > h.slowQueryThresh:
		event = h.logger.Warn().Dur("threshold", h.slowQueryThresh)
	}
	event.Str("cmd", cmd.Name()).Str("key", firstKey(cmd)).Dur("duration", duration).Msg("redis command")
}

func firstKey(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return ""
	}
	if s, ok := args[1].(string); ok {
		return s
	}
	return ""
}
