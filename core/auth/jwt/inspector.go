package jwt

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 客户端只读取载荷，不校验签名；签名由后端负责
var parser = jwt.NewParser()

// IsWellFormed 恰好三段且每段非空
func IsWellFormed(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

// Decode 解码载荷，要求存在 exp
func Decode(token string) (Payload, error) {
	if !IsWellFormed(token) {
		return Payload{}, ErrMalformedToken
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return Payload{}, ErrMissingExpiry
	}
	return claims.payload(), nil
}

// IsExpired exp <= now 时为 true；无法解码的 token 同样视为过期
func IsExpired(token string, now time.Time) bool {
	payload, err := Decode(token)
	if err != nil {
		return true
	}
	return !payload.ExpiresAt.After(now)
}

// ExpiresIn 距过期的剩余时长
func ExpiresIn(token string, now time.Time) (time.Duration, error) {
	payload, err := Decode(token)
	if err != nil {
		return 0, err
	}
	return payload.Remaining(now), nil
}
