package http

import (
	"context"
	"net/http"
)

// Clienter 发送请求的最小接口
type Clienter interface {
	Request(ctx context.Context, method, path string, body any, opts ...func(*RequestOption)) (*http.Response, error)
}
