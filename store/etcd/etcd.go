package etcd

import (
	"context"
	"errors"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/heattrack/sessionkit/store"
)

var (
	ErrInvalidConfig    = errors.New("etcd: invalid configuration")
	ErrConnectionFailed = errors.New("etcd: failed to connect")
)

// Store 基于 etcd 的键值存储
type Store struct {
	client *clientv3.Client
	config *Config
}

// New 连接 etcd 并检查第一个 endpoint 的状态
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg.SetDefaults()

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &Store{client: client, config: cfg}
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// Ping 检查连接
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.DialTimeout)
	defer cancel()

	_, err := s.client.Status(ctx, s.config.Endpoints[0])
	return err
}

func (s *Store) key(k string) string {
	return s.config.Prefix + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, store.ErrNotFound
	}
	return resp.Kvs[0].Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	var opts []clientv3.OpOption
	if s.config.LeaseTTL > 0 {
		lease, err := s.client.Grant(ctx, s.config.LeaseTTL)
		if err != nil {
			return err
		}
		opts = append(opts, clientv3.WithLease(lease.ID))
	}

	_, err := s.client.Put(ctx, s.key(key), string(value), opts...)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.Delete(ctx, s.key(key))
	return err
}

// Close 关闭连接
func (s *Store) Close() error {
	return s.client.Close()
}
