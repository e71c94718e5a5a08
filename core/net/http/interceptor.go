package http

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/heattrack/sessionkit/session"
)

// TokenSource 提供当前 token
type TokenSource interface {
	Token(ctx context.Context) string
}

// Refresher 刷新 token，返回 nil 表示无法刷新
type Refresher interface {
	Refresh(ctx context.Context) (*session.Credential, error)
}

// Expirer 结束会话
type Expirer interface {
	Expire(reason session.Reason) bool
}

// SessionHandle 三者合一，*session.Manager 即满足
type SessionHandle interface {
	TokenSource
	Refresher
	Expirer
}

var _ SessionHandle = (*session.Manager)(nil)

// Interceptor 为请求附加 Bearer token。
// 收到 401 时刷新一次并重放一次；无法刷新则结束会话，刷新出错时保留会话，两者都返回原 401 响应。
type Interceptor struct {
	base      http.RoundTripper
	tokens    TokenSource
	refresher Refresher
	expirer   Expirer
	skip      []string
}

// InterceptorOption 拦截器选项
type InterceptorOption func(*Interceptor)

// WithBase 底层 RoundTripper，默认 http.DefaultTransport
func WithBase(rt http.RoundTripper) InterceptorOption {
	return func(i *Interceptor) {
		i.base = rt
	}
}

// WithSkipPaths 以这些后缀结尾的路径不做拦截，用于登录和刷新接口
func WithSkipPaths(paths ...string) InterceptorOption {
	return func(i *Interceptor) {
		i.skip = append(i.skip, paths...)
	}
}

// NewInterceptor 创建拦截器
func NewInterceptor(s SessionHandle, opts ...InterceptorOption) *Interceptor {
	i := &Interceptor{
		base:      http.DefaultTransport,
		tokens:    s,
		refresher: s,
		expirer:   s,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// RoundTrip 实现 http.RoundTripper
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if i.skipped(req.URL.Path) {
		return i.base.RoundTrip(req)
	}

	ctx := req.Context()
	token := i.tokens.Token(ctx)
	resp, err := i.base.RoundTrip(withBearer(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	// 未登录时没有可刷新或可结束的会话
	if token == "" {
		return resp, nil
	}

	cred, rerr := i.refresher.Refresh(ctx)
	if rerr != nil {
		// 刷新暂时失败不清除凭据，后续 tick 会再试
		return resp, nil
	}
	if cred == nil || cred.Token == "" {
		i.expirer.Expire(session.ReasonSessionExpired)
		return resp, nil
	}

	retry, ok := rewind(req)
	if !ok {
		// 请求体无法重放，交给调用方
		return resp, nil
	}
	drain(resp)
	return i.base.RoundTrip(withBearer(retry, cred.Token))
}

func (i *Interceptor) skipped(path string) bool {
	return slices.ContainsFunc(i.skip, func(p string) bool {
		return strings.HasSuffix(path, p)
	})
}

// withBearer 按 RoundTripper 约定复制请求后再改头
func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// rewind 复制请求并重置请求体
func rewind(req *http.Request) (*http.Request, bool) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	r.Body = body
	return r, true
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
