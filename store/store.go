// Package store 提供会话凭据使用的键值存储抽象及其实现
package store

import (
	"context"
	"errors"
)

// ErrNotFound key 不存在
var ErrNotFound = errors.New("store: key not found")

// Store 键值存储，实现需要并发安全
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Closer 持有外部连接的存储实现
type Closer interface {
	Close() error
}

// Close 存储实现了 Closer 时关闭它
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
