package transport

import (
	"context"
	"net"
	"strconv"
)

// Server 可运行、可优雅关闭的服务
type Server interface {
	// Run 阻塞直到服务停止
	Run() error
	Shutdown(context.Context) error
}

// ValidateAddress 校验 host:port 形式的监听地址，host 可为空
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if host != "" && !isValidHost(host) {
		return false
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return p >= 1 && p <= 65535
}

func isValidHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}

	for i, r := range host {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-') {
			return false
		}
		if (i == 0 || i == len(host)-1) && r == '-' {
			return false
		}
	}
	return true
}
