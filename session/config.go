package session

import (
	"errors"
	"fmt"
	"time"
)

// ProactiveRefreshIdleRatio 主动刷新允许的最大空闲比例。
// 与 Config.RefreshInactivityRatio 是两个独立的值，不要合并。
const ProactiveRefreshIdleRatio = 0.7

const (
	DefaultInactivityTimeoutSeconds = 1200
	DefaultHeartbeatInactivityRatio = 0.75
	DefaultRefreshInactivityRatio   = 0.80
	DefaultRequestTimeoutMs         = 10000

	minCheckInterval = 15 * time.Second
	minHeartbeat     = 30 * time.Second
	minThreshold     = 30 * time.Second
)

// Options 外部配置项，零值表示使用默认或派生值
type Options struct {
	InactivityTimeoutSeconds int     `json:"inactivityTimeoutSeconds" mapstructure:"inactivityTimeoutSeconds" validate:"gte=0"`
	ActivityCheckIntervalMs  int64   `json:"activityCheckIntervalMs" mapstructure:"activityCheckIntervalMs" validate:"gte=0"`
	HeartbeatIntervalMs      int64   `json:"heartbeatIntervalMs" mapstructure:"heartbeatIntervalMs" validate:"gte=0"`
	HeartbeatInactivityRatio float64 `json:"heartbeatInactivityRatio" mapstructure:"heartbeatInactivityRatio" validate:"gte=0,lte=1"`
	RefreshInactivityRatio   float64 `json:"refreshInactivityRatio" mapstructure:"refreshInactivityRatio" validate:"gte=0,lte=1"`
	RefreshThresholdMs       int64   `json:"refreshThresholdMs" mapstructure:"refreshThresholdMs" validate:"gte=0"`
	RequestTimeoutMs         int64   `json:"requestTimeoutMs" mapstructure:"requestTimeoutMs" validate:"gte=0"`
}

// Config 解析后的不可变配置
type Config struct {
	InactivityTimeout        time.Duration
	TokenCheckInterval       time.Duration
	HeartbeatInterval        time.Duration
	RefreshThreshold         time.Duration
	HeartbeatInactivityRatio float64
	RefreshInactivityRatio   float64
	RequestTimeout           time.Duration
}

var ErrInvalidConfig = errors.New("session: invalid config")

// DefaultConfig 全部使用默认值
func DefaultConfig() Config {
	return Options{}.Config()
}

// Config 派生配置：
// 检查间隔 max(15s, timeout/8)，心跳间隔与刷新阈值 max(30s, timeout/4)，显式设置的值优先
func (o Options) Config() Config {
	seconds := o.InactivityTimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultInactivityTimeoutSeconds
	}
	timeout := time.Duration(seconds) * time.Second

	c := Config{
		InactivityTimeout:        timeout,
		TokenCheckInterval:       pick(o.ActivityCheckIntervalMs, max(minCheckInterval, timeout/8)),
		HeartbeatInterval:        pick(o.HeartbeatIntervalMs, max(minHeartbeat, timeout/4)),
		RefreshThreshold:         pick(o.RefreshThresholdMs, max(minThreshold, timeout/4)),
		HeartbeatInactivityRatio: o.HeartbeatInactivityRatio,
		RefreshInactivityRatio:   o.RefreshInactivityRatio,
		RequestTimeout:           pick(o.RequestTimeoutMs, DefaultRequestTimeoutMs*time.Millisecond),
	}
	if c.HeartbeatInactivityRatio <= 0 {
		c.HeartbeatInactivityRatio = DefaultHeartbeatInactivityRatio
	}
	if c.RefreshInactivityRatio <= 0 {
		c.RefreshInactivityRatio = DefaultRefreshInactivityRatio
	}
	return c
}

func pick(ms int64, fallback time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

// Validate 所有时长为正，比例在 (0, 1] 内
func (c Config) Validate() error {
	switch {
	case c.InactivityTimeout <= 0:
		return fmt.Errorf("%w: inactivity timeout must be positive", ErrInvalidConfig)
	case c.TokenCheckInterval <= 0, c.HeartbeatInterval <= 0:
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	case c.RefreshThreshold <= 0, c.RequestTimeout <= 0:
		return fmt.Errorf("%w: refresh threshold and request timeout must be positive", ErrInvalidConfig)
	case c.HeartbeatInactivityRatio <= 0 || c.HeartbeatInactivityRatio > 1:
		return fmt.Errorf("%w: heartbeat inactivity ratio out of range", ErrInvalidConfig)
	case c.RefreshInactivityRatio <= 0 || c.RefreshInactivityRatio > 1:
		return fmt.Errorf("%w: refresh inactivity ratio out of range", ErrInvalidConfig)
	}
	return nil
}

// idleRatio 已空闲时长占超时的比例
func (c Config) idleRatio(idle time.Duration) float64 {
	return float64(idle) / float64(c.InactivityTimeout)
}

// refreshIdleLimit 刷新仍被允许的最大空闲时长
func (c Config) refreshIdleLimit() time.Duration {
	return time.Duration(float64(c.InactivityTimeout) * c.RefreshInactivityRatio)
}

// proactiveIdleLimit 主动刷新的最大空闲时长
func (c Config) proactiveIdleLimit() time.Duration {
	return time.Duration(float64(c.InactivityTimeout) * ProactiveRefreshIdleRatio)
}
