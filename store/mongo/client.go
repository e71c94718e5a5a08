package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/store"
)

var (
	ErrInvalidConfig    = errors.New("mongo: invalid configuration")
	ErrConnectionFailed = errors.New("mongo: failed to connect")
)

// entry 集合中的文档，_id 即 key
type entry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store 基于 MongoDB 集合的键值存储
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	config     *Config
	logger     *log.Logger
}

// Option 存储选项
type Option func(*Store)

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New 连接并 Ping 主节点
func New(ctx context.Context, cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg.SetDefaults()

	s := &Store{config: cfg, logger: log.G}
	for _, opt := range opts {
		opt(s)
	}

	clientOpts := options.Client().
		ApplyURI(cfg.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize)).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s.client = client
	s.collection = client.Database(cfg.Database).Collection(cfg.Collection)
	s.logger.Debug().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("mongo store connected")
	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

// Set 按 _id upsert
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		entry{Key: key, Value: value, UpdatedAt: time.Now()},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Close 断开连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
