package log

import (
	"github.com/heattrack/sessionkit/log/writer"
)

// FileConfig 日志文件配置
type FileConfig struct {
	Dir      string `json:"dir" mapstructure:"dir"`
	Filename string `json:"filename" mapstructure:"filename"`
	FileExt  string `json:"fileExt" mapstructure:"fileExt"`
	// Rotate 轮转模式：size（默认）或 time
	Rotate string `json:"rotate" mapstructure:"rotate" validate:"omitempty,oneof=size time"`

	// 按时间轮转
	MaxAgeHours   int `json:"maxAgeHours" mapstructure:"maxAgeHours"`
	RotationHours int `json:"rotationHours" mapstructure:"rotationHours"`

	// 按大小轮转
	MaxSizeMB  int  `json:"maxSizeMB" mapstructure:"maxSizeMB"`
	MaxBackups int  `json:"maxBackups" mapstructure:"maxBackups"`
	MaxAgeDays int  `json:"maxAgeDays" mapstructure:"maxAgeDays"`
	Compress   bool `json:"compress" mapstructure:"compress"`
}

// SetDefaults 填充零值字段
func (c *FileConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "log"
	}
	if c.Filename == "" {
		c.Filename = "session"
	}
	if c.FileExt == "" {
		c.FileExt = "log"
	}
	if c.MaxAgeHours == 0 {
		c.MaxAgeHours = 24
	}
	if c.RotationHours == 0 {
		c.RotationHours = 1
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

func (c *FileConfig) toWriterConfig() (writer.RotateConfig, error) {
	mode, err := writer.ParseRotateMode(c.Rotate)
	if err != nil {
		return writer.RotateConfig{}, err
	}
	return writer.RotateConfig{
		Mode:          mode,
		Dir:           c.Dir,
		Filename:      c.Filename,
		FileExt:       c.FileExt,
		MaxAgeHours:   c.MaxAgeHours,
		RotationHours: c.RotationHours,
		MaxSizeMB:     c.MaxSizeMB,
		MaxBackups:    c.MaxBackups,
		MaxAgeDays:    c.MaxAgeDays,
		Compress:      c.Compress,
	}, nil
}
