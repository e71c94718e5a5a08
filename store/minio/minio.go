package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/heattrack/sessionkit/store"
)

const contentType = "application/octet-stream"

// Store 基于 S3 兼容对象存储的键值存储，适合多台终端共用凭据
type Store struct {
	client *minio.Client
	config *Config
}

// New 创建客户端并确认桶存在
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &Store{client: client, config: cfg}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.config.Bucket, err)
	}
	if exists {
		return nil
	}
	if !s.config.CreateBucket {
		return fmt.Errorf("bucket %q does not exist", s.config.Bucket)
	}
	if err := s.client.MakeBucket(ctx, s.config.Bucket, minio.MakeBucketOptions{Region: s.config.Region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.config.Bucket, err)
	}
	return nil
}

func (s *Store) object(key string) string {
	return s.config.Prefix + key
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.config.Bucket, s.object(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(err)
	}
	defer obj.Close()

	// GetObject 是惰性的，错误在首次读取时才出现
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, notFound(err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, s.config.Bucket, s.object(key), bytes.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Delete 对象不存在时不报错
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.config.Bucket, s.object(key), minio.RemoveObjectOptions{})
}

func notFound(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return store.ErrNotFound
	}
	return err
}
