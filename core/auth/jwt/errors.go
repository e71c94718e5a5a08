package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken 不是 header.payload.signature 结构，或 payload 无法解码
	ErrMalformedToken = errors.New("jwt: malformed token")
	// ErrMissingExpiry payload 中没有 exp
	ErrMissingExpiry = errors.New("jwt: missing exp claim")

	ErrEmptySecret = errors.New("jwt: secret cannot be empty")

	// ErrTokenExpired Verify 遇到过期 token
	ErrTokenExpired = jwt.ErrTokenExpired
)
