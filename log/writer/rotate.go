package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式
type RotateMode int

const (
	// RotateModeSize 按大小轮转
	RotateModeSize RotateMode = iota
	// RotateModeTime 按时间轮转
	RotateModeTime
)

func (m RotateMode) String() string {
	switch m {
	case RotateModeTime:
		return "time"
	case RotateModeSize:
		return "size"
	default:
		return "unknown"
	}
}

// ParseRotateMode 解析配置中的轮转模式，空字符串按大小轮转
func ParseRotateMode(s string) (RotateMode, error) {
	switch strings.ToLower(s) {
	case "", "size":
		return RotateModeSize, nil
	case "time":
		return RotateModeTime, nil
	default:
		return 0, fmt.Errorf("unsupported rotate mode: %q", s)
	}
}

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Mode     RotateMode
	Dir      string
	Filename string
	FileExt  string

	// 按时间轮转
	MaxAgeHours   int
	RotationHours int

	// 按大小轮转
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// File 创建带轮转的文件 writer
func File(c RotateConfig) (io.Writer, error) {
	switch c.Mode {
	case RotateModeTime:
		w, err := rotatelogs.New(
			c.path("%Y%m%d%H%M"),
			rotatelogs.WithLinkName(c.path("")),
			rotatelogs.WithMaxAge(time.Duration(c.MaxAgeHours)*time.Hour),
			rotatelogs.WithRotationTime(time.Duration(c.RotationHours)*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("create time rotate writer: %w", err)
		}
		return w, nil
	case RotateModeSize:
		return &lumberjack.Logger{
			Filename:   c.path(""),
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %v", c.Mode)
	}
}

// path 文件完整路径，format 非空时插入到文件名和扩展名之间
func (c *RotateConfig) path(format string) string {
	var b strings.Builder
	b.WriteString(c.Filename)
	if format != "" {
		b.WriteByte('.')
		b.WriteString(format)
	}
	b.WriteByte('.')
	b.WriteString(c.FileExt)
	return filepath.Join(c.Dir, b.String())
}
