package session

import (
	"context"
	"strconv"

	"github.com/heattrack/sessionkit/core/auth/jwt"
	"github.com/heattrack/sessionkit/errors"
)

// Refresh 刷新 token。
// 无 token、空闲过久、后端 401 或会话已被停止时返回 nil, nil；其他失败返回错误且不改动已存凭据。
// 同一会话、同一 token 的并发调用共享同一次请求。
func (m *Manager) Refresh(ctx context.Context) (*Credential, error) {
	token, err := m.creds.token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		m.metrics.refresh(ResultSkipped)
		return nil, nil
	}

	idle := m.activity.TimeSinceActivity()
	if idle > m.config.refreshIdleLimit() {
		m.metrics.refresh(ResultDenied)
		m.log().Debug().Dur("idle", idle).Msg("refresh denied, user idle")
		return nil, nil
	}

	epoch := m.epoch.Load()
	ch := m.flight.DoChan(refreshKey(epoch, token), func() (any, error) {
		// 共享的请求不随任何单个调用方取消
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.RequestTimeout)
		defer cancel()
		return m.doRefresh(reqCtx, token, epoch)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		cred, _ := res.Val.(*Credential)
		return cred.clone(), nil
	}
}

func (m *Manager) doRefresh(ctx context.Context, token string, epoch uint64) (*Credential, error) {
	cred, err := m.client.Refresh(ctx, token)

	if m.epoch.Load() != epoch {
		m.metrics.refresh(ResultStale)
		return nil, nil
	}
	if err != nil {
		if errors.IsUnauthorized(err) {
			m.metrics.refresh(ResultRejected)
			m.log().Info().Err(err).Msg("refresh rejected")
			return nil, nil
		}
		m.metrics.refresh(ResultFailed)
		return nil, err
	}
	if cred == nil || !jwt.IsWellFormed(cred.Token) {
		m.metrics.refresh(ResultFailed)
		return nil, errors.BadGateway("refresh response carries no usable token")
	}

	// 持有锁写入，避免覆盖并发过期刚清掉的凭据
	m.mu.Lock()
	if m.epoch.Load() != epoch || m.expired {
		m.mu.Unlock()
		m.metrics.refresh(ResultStale)
		return nil, nil
	}
	err = m.creds.save(ctx, cred)
	m.mu.Unlock()
	if err != nil {
		m.metrics.refresh(ResultFailed)
		return nil, err
	}

	if cred.User == nil {
		cred = &Credential{Token: cred.Token, User: m.User(ctx)}
	}
	m.metrics.refresh(ResultSuccess)
	m.log().Debug().Msg("token refreshed")
	m.emit(ctx, EventRefreshed, "")
	return cred, nil
}

// refreshKey 旧会话仍在进行的请求不会被新会话复用
func refreshKey(epoch uint64, token string) string {
	return strconv.FormatUint(epoch, 10) + ":" + token
}
