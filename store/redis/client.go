package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/store"
)

// Store 基于 Redis 的凭据存储
type Store struct {
	client redis.UniversalClient
	config *Config
	logger *log.Logger
	err    error
}

// Option 存储选项
type Option func(*Store)

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithDebug 记录每条命令，slowQueryThresh 为 0 时不检测慢查询
func WithDebug(slowQueryThresh time.Duration) Option {
	return func(s *Store) {
		s.client.AddHook(NewDebugHook(s.logger, slowQueryThresh))
	}
}

// WithTracing 通过 redisotel 接入 OpenTelemetry 链路追踪
func WithTracing(opts ...redisotel.TracingOption) Option {
	return func(s *Store) {
		if err := redisotel.InstrumentTracing(s.client, opts...); err != nil {
			s.err = errors.Join(s.err, err)
		}
	}
}

// WithOtelMetrics 通过 redisotel 导出连接池和命令指标
func WithOtelMetrics(opts ...redisotel.MetricsOption) Option {
	return func(s *Store) {
		if err := redisotel.InstrumentMetrics(s.client, opts...); err != nil {
			s.err = errors.Join(s.err, err)
		}
	}
}

// New 创建存储并 Ping，失败时关闭连接
func New(ctx context.Context, cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		config: cfg,
		logger: log.G,
		client: redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:        cfg.Addrs,
			MasterName:   cfg.MasterName,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			Protocol:     cfg.Protocol,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			PoolSize:     cfg.PoolSize,
		}),
	}
	if cfg.Tracing {
		opts = append(opts, WithTracing())
	}
	if cfg.Metrics {
		opts = append(opts, WithOtelMetrics())
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.err != nil {
		_ = s.client.Close()
		return nil, s.err
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		_ = s.client.Close()
		return nil, err
	}

	s.logger.Debug().Str("mode", cfg.Mode()).Strs("addrs", cfg.Addrs).Msg("redis store connected")
	return s, nil
}

func (s *Store) key(k string) string {
	return s.config.KeyPrefix + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.config.TTL).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close 关闭连接
func (s *Store) Close() error {
	err := s.client.Close()
	s.logger.Debug().Msg("redis store closed")
	return err
}
