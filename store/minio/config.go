package minio

import (
	"errors"
	"time"
)

var (
	ErrInvalidConfig   = errors.New("minio: invalid config")
	ErrEmptyEndpoint   = errors.New("minio: endpoint cannot be empty")
	ErrEmptyBucketName = errors.New("minio: bucket name cannot be empty")
)

// Config 对象存储配置，每个 key 保存为 Prefix+key 的对象
type Config struct {
	Endpoint        string        `json:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string        `json:"accessKeyID" mapstructure:"accessKeyID"`
	SecretAccessKey string        `json:"secretAccessKey" mapstructure:"secretAccessKey"`
	UseSSL          bool          `json:"useSSL" mapstructure:"useSSL"`
	Region          string        `json:"region" mapstructure:"region"`
	Bucket          string        `json:"bucket" mapstructure:"bucket"`
	Prefix          string        `json:"prefix" mapstructure:"prefix"`
	RequestTimeout  time.Duration `json:"requestTimeout" mapstructure:"requestTimeout"`
	// CreateBucket 桶不存在时创建
	CreateBucket bool `json:"createBucket" mapstructure:"createBucket"`
}

// SetDefaults 填充零值字段
func (c *Config) SetDefaults() {
	if c.Bucket == "" {
		c.Bucket = "sessionkit"
	}
	if c.Prefix == "" {
		c.Prefix = "session/"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrEmptyEndpoint
	}
	if c.Bucket == "" {
		return ErrEmptyBucketName
	}
	return nil
}
