package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SignerConfig 签发配置，供本地联调后端和测试使用
type SignerConfig struct {
	Secret string        `json:"secret" validate:"required"`
	TTL    time.Duration `json:"ttl"`
	Issuer string        `json:"issuer"`
}

// Signer HS256 签发器
type Signer struct {
	config SignerConfig
	now    func() time.Time
}

// SignerOption 签发器选项
type SignerOption func(*Signer)

// WithNow 替换时间来源
func WithNow(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner 创建签发器，TTL 为零时默认 20 分钟
func NewSigner(config SignerConfig, opts ...SignerOption) (*Signer, error) {
	if config.Secret == "" {
		return nil, ErrEmptySecret
	}
	if config.TTL <= 0 {
		config.TTL = 20 * time.Minute
	}

	s := &Signer{config: config, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign 填充 jti、iat、exp、lastActivity 后签名
func (s *Signer) Sign(claims Claims) (string, error) {
	now := s.now()
	if claims.RegisteredClaims.ID == "" {
		claims.RegisteredClaims.ID = uuid.NewString()
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.config.TTL))
	if s.config.Issuer != "" {
		claims.Issuer = s.config.Issuer
	}
	if claims.LastActivity == 0 {
		claims.LastActivity = now.UnixMilli()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(s.config.Secret))
}

// Verify 校验签名并返回载荷，ignoreExpiry 为 true 时接受已过期 token
func (s *Signer) Verify(token string, ignoreExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if ignoreExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
