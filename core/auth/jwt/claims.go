package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisteredClaims JWT 标准 Claims 类型别名
type RegisteredClaims = jwt.RegisteredClaims

// Claims 后端签发的会话 token 载荷
type Claims struct {
	RegisteredClaims
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	// LastActivity 签发时的活动时间戳（毫秒）
	LastActivity int64 `json:"lastActivity,omitempty"`
}

// Payload 解码后的只读视图
type Payload struct {
	Subject      string
	UserID       int64
	Username     string
	Role         string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
}

// Remaining 距过期的时长，已过期时为负数
func (p Payload) Remaining(now time.Time) time.Duration {
	return p.ExpiresAt.Sub(now)
}

func (c *Claims) payload() Payload {
	p := Payload{
		Subject:  c.Subject,
		UserID:   c.ID,
		Username: c.Username,
		Role:     c.Role,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	if c.LastActivity > 0 {
		p.LastActivity = time.UnixMilli(c.LastActivity)
	}
	return p
}
