package sessiontest_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	khttp "github.com/heattrack/sessionkit/core/net/http"
	"github.com/heattrack/sessionkit/errors"
	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/session"
	"github.com/heattrack/sessionkit/sessiontest"
	"github.com/heattrack/sessionkit/store"
)

type navRecorder struct{ reasons chan session.Reason }

func (n navRecorder) Navigate(r session.Reason) { n.reasons <- r }

type fixture struct {
	clock   clockwork.FakeClock
	backend *sessiontest.Backend
	manager *session.Manager
	nav     navRecorder
}

func setup(t *testing.T, opts ...sessiontest.Option) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	backend, err := sessiontest.New(append([]sessiontest.Option{sessiontest.WithNow(clock.Now)}, opts...)...)
	require.NoError(t, err)
	backend.Start()
	t.Cleanup(backend.Close)

	_, err = backend.AddUser("op1", "fours-2024", "operator")
	require.NoError(t, err)

	nav := navRecorder{reasons: make(chan session.Reason, 4)}
	auth := khttp.NewAuthClient(khttp.New(backend.URL(), khttp.WithTimeout(5*time.Second)))
	m, err := session.New(session.DefaultConfig(), auth, store.NewMemory(),
		session.WithClock(clock),
		session.WithNavigator(nav),
		session.WithLogger(log.NewWriter(io.Discard)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return &fixture{clock: clock, backend: backend, manager: m, nav: nav}
}

func TestLoginAndCurrentUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cred, err := f.manager.Login(ctx, "op1", "fours-2024")
	require.NoError(t, err)
	assert.Equal(t, "operator", cred.User["role"])
	assert.True(t, f.manager.IsLoggedIn(ctx))

	user, err := f.manager.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "op1", user["username"])
	assert.EqualValues(t, 1, f.backend.Counters().Me)
}

func TestLoginWrongPassword(t *testing.T) {
	f := setup(t)

	_, err := f.manager.Login(context.Background(), "op1", "nope")
	require.Error(t, err)
	assert.Equal(t, session.ReasonInvalidCredentials.String(), errors.FromError(err).Reason())
	assert.Empty(t, f.nav.reasons)
}

func TestRefreshIssuesNewToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "op1", "fours-2024")
	require.NoError(t, err)
	before := f.manager.Token(ctx)

	f.clock.Advance(time.Minute)
	f.manager.RecordActivity()
	cred, err := f.manager.Refresh(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.NotEqual(t, before, cred.Token)
	assert.Equal(t, cred.Token, f.manager.Token(ctx))
	assert.Equal(t, "op1", f.manager.User(ctx)["username"])
}

func TestInterceptorRecoversExpiredToken(t *testing.T) {
	f := setup(t, sessiontest.WithTTL(time.Minute))
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "op1", "fours-2024")
	require.NoError(t, err)

	// token 已过期，但仍在检查间隔内，监控循环尚未触发
	f.clock.Advance(90 * time.Second)
	f.manager.RecordActivity()

	api := khttp.New(f.backend.URL(), khttp.WithTransport(khttp.NewInterceptor(f.manager,
		khttp.WithSkipPaths("/auth/login", "/auth/refresh-token"))))
	resp, err := api.Get(ctx, "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	c := f.backend.Counters()
	assert.EqualValues(t, 1, c.Refresh)
	assert.EqualValues(t, 1, c.Ping)
	assert.True(t, f.manager.IsLoggedIn(ctx))
}

func TestInterceptorExpiresRemovedUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.Login(ctx, "op1", "fours-2024")
	require.NoError(t, err)
	f.backend.RemoveUser("op1")

	api := khttp.New(f.backend.URL(), khttp.WithTransport(khttp.NewInterceptor(f.manager)))
	_, err = api.Get(ctx, "/ping")
	assert.True(t, errors.IsUnauthorized(err))

	select {
	case r := <-f.nav.reasons:
		assert.Equal(t, session.ReasonSessionExpired, r)
	case <-time.After(time.Second):
		t.Fatal("expected navigation")
	}
	assert.False(t, f.manager.IsLoggedIn(ctx))
}

func TestBackendInactivity(t *testing.T) {
	f := setup(t, sessiontest.WithInactivity(5*time.Minute), sessiontest.WithTTL(time.Hour))
	ctx := context.Background()

	token, err := f.backend.Issue("op1", f.clock.Now())
	require.NoError(t, err)
	auth := khttp.NewAuthClient(khttp.New(f.backend.URL()))

	f.clock.Advance(6 * time.Minute)
	_, err = auth.Me(ctx, token)
	require.Error(t, err)
	assert.Equal(t, "inactivity_timeout", errors.FromError(err).GetMetadata()[errors.MetadataErrorType])

	// 刷新接口允许两倍空闲
	cred, err := auth.Refresh(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)

	f.clock.Advance(5 * time.Minute)
	_, err = auth.Refresh(ctx, token)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestBackendRejectsTamperedToken(t *testing.T) {
	f := setup(t)
	auth := khttp.NewAuthClient(khttp.New(f.backend.URL()))

	token, err := f.backend.Issue("op1", f.clock.Now())
	require.NoError(t, err)

	_, err = auth.Me(context.Background(), token+"x")
	assert.Equal(t, "token_invalid", errors.FromError(err).GetMetadata()[errors.MetadataErrorType])

	_, err = auth.Me(context.Background(), "")
	assert.True(t, errors.IsUnauthorized(err))
}
