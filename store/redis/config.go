package redis

import (
	"time"
)

// Config Redis 配置，Addrs 多于一个且未设置 MasterName 时为集群模式
type Config struct {
	Addrs      []string `json:"addrs" mapstructure:"addrs"`
	MasterName string   `json:"masterName" mapstructure:"masterName"`
	Username   string   `json:"username" mapstructure:"username"`
	Password   string   `json:"password" mapstructure:"password"`
	DB         int      `json:"db" mapstructure:"db"`
	Protocol   int      `json:"protocol" mapstructure:"protocol"`

	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"writeTimeout"`
	PoolSize     int           `json:"poolSize" mapstructure:"poolSize"`

	// KeyPrefix 所有 key 的前缀，多个终端共用一个实例时用于隔离
	KeyPrefix string `json:"keyPrefix" mapstructure:"keyPrefix"`
	// TTL 凭据过期时间，0 表示不过期
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// Tracing、Metrics 通过 OpenTelemetry 全局 provider 导出
	Tracing bool `json:"tracing" mapstructure:"tracing"`
	Metrics bool `json:"metrics" mapstructure:"metrics"`
}

// Single 创建单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// SetDefaults 填充零值字段
func (c *Config) SetDefaults() {
	if c.Protocol == 0 {
		c.Protocol = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "sessionkit:"
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Mode single、cluster 或 sentinel
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}
