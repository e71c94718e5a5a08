package main

import (
	"context"
	"fmt"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/store"
	"github.com/heattrack/sessionkit/store/db"
	"github.com/heattrack/sessionkit/store/etcd"
	"github.com/heattrack/sessionkit/store/file"
	"github.com/heattrack/sessionkit/store/minio"
	"github.com/heattrack/sessionkit/store/mongo"
	"github.com/heattrack/sessionkit/store/redis"
)

// openStore 按驱动创建凭据存储
func openStore(ctx context.Context, cfg StoreConfig, logger *log.Logger) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "file":
		return opened(file.New(cfg.File.Path))
	case "redis":
		return opened(redis.New(ctx, &cfg.Redis, redis.WithLogger(logger)))
	case "db":
		return opened(db.New(ctx, &cfg.DB, db.WithLogger(logger)))
	case "etcd":
		return opened(etcd.New(ctx, &cfg.Etcd))
	case "mongo":
		return opened(mongo.New(ctx, &cfg.Mongo, mongo.WithLogger(logger)))
	case "minio":
		return opened(minio.New(ctx, &cfg.Minio))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// opened 避免把 nil 指针包装成非 nil 接口
func opened[S store.Store](s S, err error) (store.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
