package config

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/heattrack/sessionkit/core/validator"
	"github.com/heattrack/sessionkit/errors"
)

// FileLoader 从文件和环境变量加载配置
type FileLoader struct {
	viper    *viper.Viper
	validate *validator.Validator
	optional bool
}

// FileOption 文件加载器选项
type FileOption func(*fileOptions)

type fileOptions struct {
	optional  bool
	envPrefix string
}

// Optional 文件不存在时不报错
func Optional(optional bool) FileOption {
	return func(o *fileOptions) {
		o.optional = optional
	}
}

// EnvPrefix 环境变量前缀
func EnvPrefix(prefix string) FileOption {
	return func(o *fileOptions) {
		o.envPrefix = prefix
	}
}

// NewFileLoader 创建文件加载器，格式由扩展名决定；name 含路径时直接读取该文件。
// 环境变量覆盖文件内容，键中的 "." 替换为 "_"。
func NewFileLoader(name string, paths []string, v *viper.Viper, validate *validator.Validator, opts ...FileOption) *FileLoader {
	var o fileOptions
	for _, opt := range opts {
		opt(&o)
	}

	ext := filepath.Ext(name)
	v.SetConfigType(strings.TrimPrefix(ext, "."))
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		v.SetConfigFile(name)
	} else {
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		v.SetConfigName(strings.TrimSuffix(name, ext))
	}

	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{viper: v, validate: validate, optional: o.optional}
}

// Load 默认值、文件、环境变量、派生值、校验，依次执行
func (l *FileLoader) Load(target any) error {
	if d, ok := target.(Defaulter); ok {
		d.SetDefaults()
	}

	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist)
		if !l.optional || !missing {
			return errors.Wrap(err, 404, "config file not found")
		}
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return errors.Wrap(err, 500, "config parse error")
	}

	if r, ok := target.(Resolver); ok {
		if err := r.Resolve(); err != nil {
			return errors.Wrap(err, 400, "config resolve failed")
		}
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.Wrap(err, 400, "config validation failed")
		}
	}
	return nil
}
