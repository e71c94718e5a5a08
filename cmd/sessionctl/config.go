package main

import (
	"fmt"
	"strings"
	"time"

	khttp "github.com/heattrack/sessionkit/core/net/http"
	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/session"
	"github.com/heattrack/sessionkit/store/db"
	"github.com/heattrack/sessionkit/store/etcd"
	"github.com/heattrack/sessionkit/store/minio"
	"github.com/heattrack/sessionkit/store/mongo"
	"github.com/heattrack/sessionkit/store/redis"
	thttp "github.com/heattrack/sessionkit/transport/http"
	"github.com/heattrack/sessionkit/transport/http/middleware"
	"github.com/heattrack/sessionkit/transport/kafka"
	"github.com/heattrack/sessionkit/transport/websocket"
)

// Config sessionctl 配置，对应 sessionctl.yaml，环境变量前缀 SESSIONCTL
type Config struct {
	Backend BackendConfig   `json:"backend" mapstructure:"backend"`
	Session session.Options `json:"session" mapstructure:"session"`
	Store   StoreConfig     `json:"store" mapstructure:"store"`
	Log     LogConfig       `json:"log" mapstructure:"log"`
	Status  StatusConfig    `json:"status" mapstructure:"status"`
	Events  EventsConfig    `json:"events" mapstructure:"events"`
}

type BackendConfig struct {
	BaseURL string          `json:"baseURL" mapstructure:"baseURL" validate:"required,url"`
	Timeout time.Duration   `json:"timeout" mapstructure:"timeout"`
	Paths   khttp.AuthPaths `json:"paths" mapstructure:"paths"`
}

// StoreConfig 凭据存储，Driver 决定使用哪一节
type StoreConfig struct {
	Driver string       `json:"driver" mapstructure:"driver" validate:"oneof=memory file redis db etcd mongo minio"`
	File   FileStore    `json:"file" mapstructure:"file"`
	Redis  redis.Config `json:"redis" mapstructure:"redis"`
	DB     db.Config    `json:"db" mapstructure:"db"`
	Etcd   etcd.Config  `json:"etcd" mapstructure:"etcd"`
	Mongo  mongo.Config `json:"mongo" mapstructure:"mongo"`
	Minio  minio.Config `json:"minio" mapstructure:"minio"`
}

type FileStore struct {
	Path string `json:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	// ToFile 同时写入轮转文件
	ToFile bool           `json:"toFile" mapstructure:"toFile"`
	File   log.FileConfig `json:"file" mapstructure:"file"`
}

// StatusConfig 本地状态服务：会话状态、活动上报、指标、健康检查
type StatusConfig struct {
	Enabled   bool                  `json:"enabled" mapstructure:"enabled"`
	Addr      string                `json:"addr" mapstructure:"addr"`
	FeedPath  string                `json:"feedPath" mapstructure:"feedPath"`
	Metrics   thttp.MetricsOption   `json:"metrics" mapstructure:"metrics"`
	Health    thttp.HealthOption    `json:"health" mapstructure:"health"`
	Websocket websocket.Config      `json:"websocket" mapstructure:"websocket"`
	Cors      middleware.CorsConfig `json:"cors" mapstructure:"cors"`
}

type EventsConfig struct {
	Enabled bool         `json:"enabled" mapstructure:"enabled"`
	Kafka   kafka.Config `json:"kafka" mapstructure:"kafka"`
}

func (c *Config) SetDefaults() {
	c.Backend.BaseURL = "http://localhost:5000/api"
	c.Backend.Timeout = 15 * time.Second
	c.Store.Driver = "file"
	c.Store.File.Path = "session.json"
	c.Log.Level = "info"
	c.Status.Enabled = true
	c.Status.Addr = "127.0.0.1:9464"
	c.Status.FeedPath = "/session/feed"
	c.Status.Metrics.Enabled = true
	c.Status.Health.Enabled = true
}

// Resolve 补全依赖其他字段的默认值并检查会话参数
func (c *Config) Resolve() error {
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	c.Backend.Paths.SetDefaults()
	c.Log.File.SetDefaults()
	c.Status.Metrics.SetDefaults()
	c.Status.Health.SetDefaults()
	c.Status.Websocket.SetDefaults()

	if err := c.Session.Config().Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}
