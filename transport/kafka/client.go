package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"golang.org/x/sync/errgroup"

	"github.com/heattrack/sessionkit/log"
)

// Client 按主题缓存生产者
type Client struct {
	config    *Config
	transport *kafka.Transport
	logger    *log.Logger

	mu             sync.RWMutex
	syncProducers  map[string]*kafka.Writer
	asyncProducers map[string]*kafka.Writer
}

type Option func(*Client)

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New 创建客户端，不建立连接
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:         cfg,
		logger:         log.G,
		syncProducers:  make(map[string]*kafka.Writer),
		asyncProducers: make(map[string]*kafka.Writer),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = &kafka.Transport{DialTimeout: cfg.Timeout}
	if cfg.Username != "" && cfg.Password != "" {
		c.transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}
	return c, nil
}

func (c *Client) createWriter(topic string, async bool) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               c.config.balancer(),
		Transport:              c.transport,
		AllowAutoTopicCreation: c.config.AllowAutoTopicCreation,
		BatchTimeout:           c.config.BatchTimeout,
		WriteTimeout:           c.config.Timeout,
		Async:                  async,
	}
	if async {
		logger := c.logger
		w.Completion = func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn().Err(err).Str("topic", topic).Int("messages", len(messages)).Msg("kafka async write failed")
			}
		}
	}
	return w
}

func (c *Client) producer(producers map[string]*kafka.Writer, topic string, async bool) *kafka.Writer {
	c.mu.RLock()
	if w, ok := producers[topic]; ok {
		c.mu.RUnlock()
		return w
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := producers[topic]; ok {
		return w
	}
	w := c.createWriter(topic, async)
	producers[topic] = w
	return w
}

// Producer 同步生产者，如果不存在则创建
func (c *Client) Producer(topic string) *kafka.Writer {
	return c.producer(c.syncProducers, topic, false)
}

// AsyncProducer 异步生产者，写入立即返回，失败只记录日志
func (c *Client) AsyncProducer(topic string) *kafka.Writer {
	return c.producer(c.asyncProducers, topic, true)
}

// Close 刷出缓冲并关闭所有生产者
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()

	eg, _ := errgroup.WithContext(ctx)
	for _, producers := range []map[string]*kafka.Writer{c.syncProducers, c.asyncProducers} {
		for topic, w := range producers {
			eg.Go(w.Close)
			delete(producers, topic)
		}
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
