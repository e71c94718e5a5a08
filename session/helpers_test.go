package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/store"
)

var epochStart = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// tokenExpiringAt 构造一个只含 exp 的 token，签名无效但客户端不校验
func tokenExpiringAt(exp time.Time) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(fmt.Sprintf(`{"username":"op1","exp":%d}`, exp.Unix()))) + ".c2ln"
}

type fakeClient struct {
	loginCred *Credential
	loginErr  error

	refreshCalls atomic.Int32
	refreshFn    func(ctx context.Context, token string) (*Credential, error)

	meCalls atomic.Int32
	meErr   error
}

func (c *fakeClient) Login(context.Context, string, string) (*Credential, error) {
	return c.loginCred, c.loginErr
}

func (c *fakeClient) Refresh(ctx context.Context, token string) (*Credential, error) {
	c.refreshCalls.Add(1)
	if c.refreshFn != nil {
		return c.refreshFn(ctx, token)
	}
	return nil, fmt.Errorf("refresh not configured")
}

func (c *fakeClient) Me(context.Context, string) (map[string]any, error) {
	c.meCalls.Add(1)
	if c.meErr != nil {
		return nil, c.meErr
	}
	return map[string]any{"username": "op1"}, nil
}

type recordingNavigator struct {
	mu      sync.Mutex
	reasons []Reason
}

func (n *recordingNavigator) Navigate(reason Reason) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reasons = append(n.reasons, reason)
}

func (n *recordingNavigator) Reasons() []Reason {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Reason(nil), n.reasons...)
}

type harness struct {
	m      *Manager
	clock  clockwork.FakeClock
	client *fakeClient
	store  *store.Memory
	nav    *recordingNavigator
	bus    *Bus
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		clock:  clockwork.NewFakeClockAt(epochStart),
		client: &fakeClient{},
		store:  store.NewMemory(),
		nav:    &recordingNavigator{},
		bus:    NewBus(),
	}

	base := []Option{
		WithClock(h.clock),
		WithNavigator(h.nav),
		WithActivitySource(h.bus),
		WithLogger(log.NewWriter(io.Discard)),
	}
	m, err := New(Options{}.Config(), h.client, h.store, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	h.m = m
	return h
}

// seed 直接写入存储而不启动循环，用于逐个 tick 调用
func (h *harness) seed(t *testing.T, token string) uint64 {
	t.Helper()
	require.NoError(t, h.m.creds.save(context.Background(), &Credential{
		Token: token,
		User:  map[string]any{"username": "op1"},
	}))
	h.m.activity.Reset()
	return h.m.epoch.Load()
}
