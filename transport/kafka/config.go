package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrInvalidConfig = errors.New("kafka: invalid config")
	ErrEmptyBrokers  = errors.New("kafka: empty brokers")
)

// Balancer 分区策略
type Balancer int

const (
	BalancerLeastBytes Balancer = iota
	BalancerHash
)

// Config Kafka 生产者配置
type Config struct {
	Brokers  []string `json:"brokers" mapstructure:"brokers"`
	Username string   `json:"username" mapstructure:"username"`
	Password string   `json:"password" mapstructure:"password"`
	// Topic 会话事件写入的主题
	Topic string `json:"topic" mapstructure:"topic"`
	// Balancer 0: LeastBytes，1: Hash（同一 session 落在同一分区）
	Balancer               Balancer      `json:"balancer" mapstructure:"balancer"`
	AllowAutoTopicCreation bool          `json:"allowAutoTopicCreation" mapstructure:"allowAutoTopicCreation"`
	Timeout                time.Duration `json:"timeout" mapstructure:"timeout"`
	BatchTimeout           time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	CloseTimeout           time.Duration `json:"closeTimeout" mapstructure:"closeTimeout"`
}

// SetDefaults 填充零值字段
func (c *Config) SetDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "session-events"
	}
	if c.Timeout == 0 {
		c.Timeout = 3 * time.Second
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = time.Second
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = 5 * time.Second
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrEmptyBrokers
	}
	if c.Topic == "" {
		return ErrInvalidConfig
	}
	return nil
}

func (c *Config) balancer() kafka.Balancer {
	switch c.Balancer {
	case BalancerHash:
		return &kafka.Hash{}
	default:
		return &kafka.LeastBytes{}
	}
}
