package desensitize

import "io"

// Writer 写入前对内容脱敏
type Writer struct {
	writer io.Writer
	hook   *Hook
}

// NewWriter 包装 writer
func NewWriter(writer io.Writer, hook *Hook) *Writer {
	if writer == nil {
		panic("writer cannot be nil")
	}
	if hook == nil {
		panic("hook cannot be nil")
	}
	return &Writer{writer: writer, hook: hook}
}

// Write 返回原始长度，避免 zerolog 把长度变化当成短写
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook.RuleCount() == 0 {
		return w.writer.Write(p)
	}

	text := string(p)
	masked := w.hook.Desensitize(text)
	if masked == text {
		return w.writer.Write(p)
	}

	if _, err := io.WriteString(w.writer, masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
