package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/heattrack/sessionkit/store"
)

// 凭据在存储中的 key
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Credential 登录凭据；User 对本包不透明
type Credential struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user,omitempty"`
}

// credentials 读写存储中的凭据，只有 Manager 调用
type credentials struct {
	store store.Store
}

func (c credentials) token(ctx context.Context) (string, error) {
	v, err := c.store.Get(ctx, KeyToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (c credentials) user(ctx context.Context) (map[string]any, error) {
	v, err := c.store.Get(ctx, KeyUser)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user map[string]any
	if err := json.Unmarshal(v, &user); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return user, nil
}

// save 写入 token；User 为 nil 时保留已存的用户信息
func (c credentials) save(ctx context.Context, cred *Credential) error {
	if err := c.store.Set(ctx, KeyToken, []byte(cred.Token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if cred.User == nil {
		return nil
	}

	raw, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := c.store.Set(ctx, KeyUser, raw); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (c credentials) clear(ctx context.Context) error {
	return errors.Join(
		c.store.Delete(ctx, KeyToken),
		c.store.Delete(ctx, KeyUser),
	)
}

func (c *Credential) clone() *Credential {
	if c == nil {
		return nil
	}
	return &Credential{Token: c.Token, User: maps.Clone(c.User)}
}
