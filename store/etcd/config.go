package etcd

import "time"

// Config etcd 配置
type Config struct {
	Endpoints   []string      `json:"endpoints" mapstructure:"endpoints"`
	Username    string        `json:"username" mapstructure:"username"`
	Password    string        `json:"password" mapstructure:"password"`
	DialTimeout time.Duration `json:"dialTimeout" mapstructure:"dialTimeout"`
	// Prefix 所有 key 的前缀
	Prefix string `json:"prefix" mapstructure:"prefix"`
	// LeaseTTL 写入时绑定的租约秒数，0 表示不绑定
	LeaseTTL int64 `json:"leaseTTL" mapstructure:"leaseTTL"`
}

// SetDefaults 填充零值字段
func (c *Config) SetDefaults() {
	if len(c.Endpoints) == 0 {
		c.Endpoints = []string{"localhost:2379"}
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "/sessionkit/"
	}
}
