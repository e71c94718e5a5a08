package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/heattrack/sessionkit/core/validator"
)

// Config 把配置加载到 target；启动时加载一次，不做热更新
type Config struct {
	mu       sync.Mutex
	viper    *viper.Viper
	validate *validator.Validator
	target   any
	loader   Loader
	file     string
	paths    []string
	optional bool
	prefix   string
}

// Option 配置选项
type Option func(*Config)

// WithViper 使用自定义 viper 实例
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator 使用自定义校验器
func WithValidator(v *validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader 替换加载器
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithFile 配置文件名和搜索路径，默认 config.yaml 和 "."
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		c.file = name
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithOptionalFile 文件不存在时只使用默认值和环境变量
func WithOptionalFile() Option {
	return func(c *Config) {
		c.optional = true
	}
}

// WithEnvPrefix 环境变量前缀，例如 SESSIONKIT
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.prefix = prefix
	}
}

// New 创建 Config，未指定加载器时使用 FileLoader
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.NewWithOptions(viper.ExperimentalBindStruct()),
		validate: validator.Validate,
		target:   target,
		file:     "config.yaml",
		paths:    []string{"."},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader(c.file, c.paths, c.viper, c.validate,
			Optional(c.optional), EnvPrefix(c.prefix))
	}
	return c
}

// Load 读取配置
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader.Load(c.target)
}

// Viper 底层 viper 实例
func (c *Config) Viper() *viper.Viper {
	return c.viper
}

// Load 便捷函数：New + Load
func Load(target any, opts ...Option) error {
	return New(target, opts...).Load()
}
