package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/store"
)

// Store 基于 gorm 的键值存储，数据落在 kv_entries 表
type Store struct {
	config *Config
	db     *gorm.DB
	sqlDB  *sql.DB
	logger *log.Logger

	slowQueryThresh time.Duration
}

// Option 存储选项
type Option func(*Store)

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSlowQueryThreshold 设置慢查询阈值，0 表示禁用
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *Store) {
		s.slowQueryThresh = d
	}
}

// New 打开连接、Ping 并迁移表结构
func New(ctx context.Context, cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg.SetDefaults()

	s := &Store{config: cfg, logger: log.G}
	for _, opt := range opts {
		opt(s)
	}

	dialector, err := s.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormLogWriter{s.logger}, logger.Config{
			LogLevel:                  logger.LogLevel(cfg.LogLevel()),
			SlowThreshold:             s.slowQueryThresh,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	s.db = db
	s.sqlDB = sqlDB

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	s.logger.Debug().Str("driver", cfg.Driver.String()).Msg("database store ready")
	return s, nil
}

func (s *Store) dialector() (gorm.Dialector, error) {
	dsn, err := s.config.BuildDSN()
	if err != nil {
		return nil, err
	}

	switch s.config.Driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, store.ErrNotFound
	}

	var entry Entry
	err := s.db.WithContext(ctx).Where(&Entry{Key: key}).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Set 按主键 upsert
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(&Entry{Key: key}).Delete(&Entry{}).Error
}

// DB 底层 gorm 实例
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close 关闭连接池
func (s *Store) Close() error {
	if s.sqlDB != nil {
		return s.sqlDB.Close()
	}
	return nil
}

// gormLogWriter 把 gorm 日志转到 log.Logger
type gormLogWriter struct {
	logger *log.Logger
}

func (w gormLogWriter) Printf(format string, args ...any) {
	w.logger.Info().Msgf(format, args...)
}
