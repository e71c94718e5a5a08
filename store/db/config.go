package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Driver 数据库驱动类型
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"maxIdleConns"`
	MaxOpenConns    int           `json:"maxOpenConns" mapstructure:"maxOpenConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"connMaxIdleTime"`
}

// Config 数据库配置；DSN 非空时直接使用，否则按驱动拼接
type Config struct {
	Driver Driver `json:"driver" mapstructure:"driver" validate:"omitempty,oneof=mysql postgres sqlite"`
	DSN    string `json:"dsn" mapstructure:"dsn"`

	// sqlite
	FilePath string `json:"filePath" mapstructure:"filePath"`

	// mysql / postgres
	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	User     string `json:"user" mapstructure:"user"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`

	Pool PoolConfig `json:"pool" mapstructure:"pool"`
	// Level silent、error、warn、info
	Level string `json:"level" mapstructure:"level"`
}

// SetDefaults 填充零值字段
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	switch c.Driver {
	case DriverSQLite:
		if c.FilePath == "" {
			c.FilePath = "./session.db"
		}
		// 单文件，单连接
		if c.Pool.MaxOpenConns == 0 {
			c.Pool.MaxOpenConns = 1
		}
		if c.Pool.MaxIdleConns == 0 {
			c.Pool.MaxIdleConns = 1
		}
	case DriverMySQL:
		if c.Port == 0 {
			c.Port = 3306
		}
	case DriverPostgres:
		if c.Port == 0 {
			c.Port = 5432
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Pool.MaxIdleConns == 0 {
		c.Pool.MaxIdleConns = 2
	}
	if c.Pool.MaxOpenConns == 0 {
		c.Pool.MaxOpenConns = 10
	}
	if c.Pool.ConnMaxLifetime == 0 {
		c.Pool.ConnMaxLifetime = time.Hour
	}
	if c.Pool.ConnMaxIdleTime == 0 {
		c.Pool.ConnMaxIdleTime = 10 * time.Minute
	}
}

// BuildDSN 返回连接字符串
func (c *Config) BuildDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}

	var b strings.Builder
	switch c.Driver {
	case DriverSQLite:
		b.WriteString("file:")
		b.WriteString(c.FilePath)
		b.WriteString("?_journal_mode=WAL&_busy_timeout=5000")
	case DriverMySQL:
		// user:password@tcp(host:port)/database
		b.WriteString(c.User)
		b.WriteByte(':')
		b.WriteString(c.Password)
		b.WriteString("@tcp(")
		b.WriteString(c.Host)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.Port))
		b.WriteString(")/")
		b.WriteString(c.Database)
		b.WriteString("?charset=utf8mb4&parseTime=true&loc=Local")
	case DriverPostgres:
		fmt.Fprintf(&b, "host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
	return b.String(), nil
}

// LogLevel 解析日志级别，无法识别时静默
func (c *Config) LogLevel() int {
	switch strings.ToLower(c.Level) {
	case "error":
		return 2
	case "warn":
		return 3
	case "info":
		return 4
	default:
		return 1
	}
}
