package redis

import "errors"

var (
	// ErrInvalidConfig 配置为 nil
	ErrInvalidConfig = errors.New("redis: invalid configuration")

	// ErrEmptyAddrs 地址列表为空
	ErrEmptyAddrs = errors.New("redis: addrs cannot be empty")

	// ErrInvalidTimeout 超时配置为负数
	ErrInvalidTimeout = errors.New("redis: invalid timeout value")
)
