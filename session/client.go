package session

import "context"

// AuthClient 后端认证接口。
// 认证失败返回的错误链中应包含 401 的 *errors.Error，其余失败按原样返回。
type AuthClient interface {
	// Login POST /auth/login
	Login(ctx context.Context, username, password string) (*Credential, error)
	// Refresh POST /auth/refresh-token，响应中没有 user 时 Credential.User 为 nil
	Refresh(ctx context.Context, token string) (*Credential, error)
	// Me GET /auth/me，同时用作心跳
	Me(ctx context.Context, token string) (map[string]any, error)
}
