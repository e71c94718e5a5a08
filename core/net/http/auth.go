package http

import (
	"context"
	"net/http"

	"github.com/heattrack/sessionkit/errors"
	"github.com/heattrack/sessionkit/session"
)

// AuthPaths 认证接口路径，相对客户端 baseURL
type AuthPaths struct {
	Login   string `json:"login" mapstructure:"login"`
	Refresh string `json:"refresh" mapstructure:"refresh"`
	Me      string `json:"me" mapstructure:"me"`
}

// SetDefaults 填充默认路径
func (p *AuthPaths) SetDefaults() {
	if p.Login == "" {
		p.Login = "/auth/login"
	}
	if p.Refresh == "" {
		p.Refresh = "/auth/refresh-token"
	}
	if p.Me == "" {
		p.Me = "/auth/me"
	}
}

// AuthClient 通过后端 REST 接口实现 session.AuthClient。
// 底层客户端不能挂 401 拦截器，否则刷新会递归。
type AuthClient struct {
	cli   Clienter
	paths AuthPaths
}

var _ session.AuthClient = (*AuthClient)(nil)

// AuthOption AuthClient 选项
type AuthOption func(*AuthClient)

// WithAuthPaths 覆盖接口路径，空字段使用默认值
func WithAuthPaths(paths AuthPaths) AuthOption {
	return func(a *AuthClient) {
		a.paths = paths
	}
}

func NewAuthClient(cli Clienter, opts ...AuthOption) *AuthClient {
	a := &AuthClient{cli: cli}
	for _, opt := range opts {
		opt(a)
	}
	a.paths.SetDefaults()
	return a
}

// Paths 生效的接口路径
func (a *AuthClient) Paths() AuthPaths {
	return a.paths
}

type credentialResponse struct {
	envelope
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

type userResponse struct {
	envelope
	Data map[string]any `json:"data"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login POST /auth/login
func (a *AuthClient) Login(ctx context.Context, username, password string) (*session.Credential, error) {
	var out credentialResponse
	if _, err := a.cli.Request(ctx, http.MethodPost, a.paths.Login, loginRequest{Username: username, Password: password},
		WithResponse(&out)); err != nil {
		return nil, err
	}
	return out.credential()
}

// Refresh POST /auth/refresh-token，携带当前 token
func (a *AuthClient) Refresh(ctx context.Context, token string) (*session.Credential, error) {
	var out credentialResponse
	if _, err := a.cli.Request(ctx, http.MethodPost, a.paths.Refresh, nil,
		WithBearer(token), WithResponse(&out)); err != nil {
		return nil, err
	}
	return out.credential()
}

// Me GET /auth/me，同时用作心跳
func (a *AuthClient) Me(ctx context.Context, token string) (map[string]any, error) {
	var out userResponse
	if _, err := a.cli.Request(ctx, http.MethodGet, a.paths.Me, nil,
		WithBearer(token), WithResponse(&out)); err != nil {
		return nil, err
	}
	if out.failed() {
		return nil, out.error()
	}
	return out.Data, nil
}

func (r credentialResponse) credential() (*session.Credential, error) {
	if r.failed() {
		return nil, r.error()
	}
	if r.Token == "" {
		return nil, errors.BadGateway("response carries no token")
	}
	return &session.Credential{Token: r.Token, User: r.User}, nil
}

// failed 2xx 但 success 为 false
func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

func (e envelope) error() *errors.Error {
	err := errors.BadGateway("%s", e.Message)
	if e.ErrorType != "" {
		err = err.WithMetadata(map[string]string{errors.MetadataErrorType: e.ErrorType})
	}
	return err
}
