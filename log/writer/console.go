package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Console 控制台 writer，输出到标准错误，不干扰命令的标准输出
func Console() zerolog.ConsoleWriter {
	return ConsoleTo(os.Stderr)
}

// ConsoleTo 输出到指定 writer 的控制台格式
func ConsoleTo(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		TimeFormat:  time.DateTime,
		FormatLevel: formatLevel,
	}
}

func formatLevel(i any) string {
	return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
}
