package mongo

import (
	"strconv"
	"strings"
	"time"
)

// Config MongoDB 配置；URI 非空时直接使用
type Config struct {
	URI         string        `json:"uri" mapstructure:"uri"`
	Host        string        `json:"host" mapstructure:"host"`
	Port        int           `json:"port" mapstructure:"port"`
	User        string        `json:"user" mapstructure:"user"`
	Password    string        `json:"password" mapstructure:"password"`
	MaxPoolSize int           `json:"maxPoolSize" mapstructure:"maxPoolSize"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
	Database    string        `json:"database" mapstructure:"database"`
	Collection  string        `json:"collection" mapstructure:"collection"`
}

// SetDefaults 填充零值字段
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 27017
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = 10
	}
	if c.Timeout == 0 {
		c.Timeout = 3 * time.Second
	}
	if c.Database == "" {
		c.Database = "sessionkit"
	}
	if c.Collection == "" {
		c.Collection = "kv_entries"
	}
}

func (c *Config) uri() string {
	if c.URI != "" {
		return c.URI
	}

	var b strings.Builder
	b.WriteString("mongodb://")
	if c.User != "" {
		b.WriteString(c.User)
		if c.Password != "" {
			b.WriteByte(':')
			b.WriteString(c.Password)
		}
		b.WriteByte('@')
	}
	b.WriteString(c.Host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Port))
	return b.String()
}
