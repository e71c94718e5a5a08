package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heattrack/sessionkit/errors"
)

func TestRefreshWithoutToken(t *testing.T) {
	h := newHarness(t)

	cred, err := h.m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cred)
	assert.Zero(t, h.client.refreshCalls.Load())
}

func TestRefreshDeniedWhenIdle(t *testing.T) {
	h := newHarness(t)
	h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))

	h.clock.Advance(961 * time.Second)
	cred, err := h.m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cred)
	assert.Zero(t, h.client.refreshCalls.Load())
}

func TestRefreshAllowedAtIdleLimit(t *testing.T) {
	h := newHarness(t)
	fresh := tokenExpiringAt(epochStart.Add(2 * time.Hour))
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		return &Credential{Token: fresh}, nil
	}
	h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))

	h.clock.Advance(960 * time.Second)
	cred, err := h.m.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, fresh, cred.Token)
}

func TestRefreshSuccessKeepsUser(t *testing.T) {
	h := newHarness(t)
	old := tokenExpiringAt(epochStart.Add(time.Minute))
	fresh := tokenExpiringAt(epochStart.Add(time.Hour))
	h.client.refreshFn = func(_ context.Context, token string) (*Credential, error) {
		assert.Equal(t, old, token)
		return &Credential{Token: fresh}, nil
	}
	h.seed(t, old)

	cred, err := h.m.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, fresh, cred.Token)
	assert.Equal(t, "op1", cred.User["username"])

	assert.Equal(t, fresh, h.m.Token(context.Background()))
	assert.Equal(t, "op1", h.m.User(context.Background())["username"])
}

func TestRefreshUnauthorized(t *testing.T) {
	h := newHarness(t)
	old := tokenExpiringAt(epochStart.Add(time.Minute))
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		return nil, errors.Unauthorized("Refresh refusé")
	}
	h.seed(t, old)

	cred, err := h.m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cred)
	assert.Equal(t, old, h.m.Token(context.Background()))
	assert.Empty(t, h.nav.Reasons())
}

func TestRefreshServerError(t *testing.T) {
	h := newHarness(t)
	old := tokenExpiringAt(epochStart.Add(time.Minute))
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		return nil, errors.Internal("database unavailable")
	}
	h.seed(t, old)

	cred, err := h.m.Refresh(context.Background())
	require.Error(t, err)
	assert.Nil(t, cred)
	assert.Equal(t, 500, errors.Code(err))
	assert.Equal(t, old, h.m.Token(context.Background()))
}

func TestRefreshRejectsMalformedResponse(t *testing.T) {
	h := newHarness(t)
	old := tokenExpiringAt(epochStart.Add(time.Minute))
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		return &Credential{Token: "garbage"}, nil
	}
	h.seed(t, old)

	_, err := h.m.Refresh(context.Background())
	assert.Equal(t, 502, errors.Code(err))
	assert.Equal(t, old, h.m.Token(context.Background()))
}

func TestRefreshConcurrentCallsShareRequest(t *testing.T) {
	h := newHarness(t)
	fresh := tokenExpiringAt(epochStart.Add(time.Hour))
	release := make(chan struct{})
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		<-release
		return &Credential{Token: fresh}, nil
	}
	h.seed(t, tokenExpiringAt(epochStart.Add(time.Minute)))

	const callers = 8
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred, err := h.m.Refresh(context.Background())
			if assert.NoError(t, err) && assert.NotNil(t, cred) {
				tokens[i] = cred.Token
			}
		}()
	}

	require.Eventually(t, func() bool {
		return h.client.refreshCalls.Load() == 1
	}, time.Second, time.Millisecond)
	// 让其余调用方挂到同一个请求上
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, h.client.refreshCalls.Load())
	for _, token := range tokens {
		assert.Equal(t, fresh, token)
	}
}

func TestRefreshCallerCancel(t *testing.T) {
	h := newHarness(t)
	fresh := tokenExpiringAt(epochStart.Add(time.Hour))
	release := make(chan struct{})
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		<-release
		return &Credential{Token: fresh}, nil
	}
	h.seed(t, tokenExpiringAt(epochStart.Add(time.Minute)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.m.Refresh(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return h.client.refreshCalls.Load() == 1
	}, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// 共享请求继续完成并写入
	close(release)
	require.Eventually(t, func() bool {
		return h.m.Token(context.Background()) == fresh
	}, time.Second, 5*time.Millisecond)
}

func TestRefreshDiscardedAfterStop(t *testing.T) {
	h := newHarness(t)
	old := tokenExpiringAt(epochStart.Add(time.Minute))
	release := make(chan struct{})
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		<-release
		return &Credential{Token: tokenExpiringAt(epochStart.Add(time.Hour))}, nil
	}
	h.seed(t, old)

	type result struct {
		cred *Credential
		err  error
	}
	done := make(chan result, 1)
	go func() {
		cred, err := h.m.Refresh(context.Background())
		done <- result{cred, err}
	}()

	require.Eventually(t, func() bool {
		return h.client.refreshCalls.Load() == 1
	}, time.Second, time.Millisecond)
	h.m.Stop()
	close(release)

	res := <-done
	require.NoError(t, res.err)
	assert.Nil(t, res.cred)
	assert.Equal(t, old, h.m.Token(context.Background()))
}

func TestRefreshNewSessionDoesNotJoinOldRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	old := tokenExpiringAt(epochStart.Add(time.Minute))
	current := tokenExpiringAt(epochStart.Add(2 * time.Minute))
	renewed := tokenExpiringAt(epochStart.Add(time.Hour))

	release := make(chan struct{})
	var mu sync.Mutex
	var sent []string
	h.client.refreshFn = func(_ context.Context, token string) (*Credential, error) {
		mu.Lock()
		sent = append(sent, token)
		mu.Unlock()
		if token == old {
			<-release
		}
		return &Credential{Token: renewed}, nil
	}
	h.seed(t, old)

	done := make(chan *Credential, 1)
	go func() {
		cred, _ := h.m.Refresh(ctx)
		done <- cred
	}()
	require.Eventually(t, func() bool {
		return h.client.refreshCalls.Load() == 1
	}, time.Second, time.Millisecond)

	require.True(t, h.m.Logout(ctx))
	require.NoError(t, h.m.StartSession(ctx, &Credential{Token: current}))

	cred, err := h.m.Refresh(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, renewed, cred.Token)
	assert.Equal(t, renewed, h.m.Token(ctx))

	close(release)
	assert.Nil(t, <-done)
	assert.Equal(t, renewed, h.m.Token(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{old, current}, sent)
}

func TestRefreshDoesNotResurrectExpiredSession(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.client.refreshFn = func(context.Context, string) (*Credential, error) {
		<-release
		return &Credential{Token: tokenExpiringAt(epochStart.Add(time.Hour))}, nil
	}
	h.seed(t, tokenExpiringAt(epochStart.Add(time.Minute)))

	done := make(chan *Credential, 1)
	go func() {
		cred, _ := h.m.Refresh(context.Background())
		done <- cred
	}()

	require.Eventually(t, func() bool {
		return h.client.refreshCalls.Load() == 1
	}, time.Second, time.Millisecond)
	require.True(t, h.m.Expire(ReasonSessionExpired))
	close(release)

	assert.Nil(t, <-done)
	assert.Empty(t, h.m.Token(context.Background()))
	assert.Equal(t, []Reason{ReasonSessionExpired}, h.nav.Reasons())
}
