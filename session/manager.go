package session

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"

	"github.com/heattrack/sessionkit/core/auth/jwt"
	"github.com/heattrack/sessionkit/errors"
	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/store"
)

var (
	ErrNilClient = stderrors.New("session: auth client is required")
	ErrNilStore  = stderrors.New("session: store is required")
)

const defaultPoolSize = 4

// Manager 会话生命周期管理器，应用启动时创建一次并显式传递
type Manager struct {
	config    Config
	client    AuthClient
	creds     credentials
	clock     clockwork.Clock
	logger    *log.Logger
	navigator Navigator
	source    ActivitySource
	metrics   *Metrics
	sink      EventSink
	poolSize  int

	pool     *ants.Pool
	activity *ActivityTracker
	flight   singleflight.Group
	// epoch 每次 Stop 或过期递增，用于丢弃迟到的结果
	epoch      atomic.Uint64
	sessionLog atomic.Pointer[log.Logger]
	sessionID  atomic.Value

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	unsubscribe func()
	expired     bool
	lastReason  Reason
}

// New 创建 Manager
func New(cfg Config, client AuthClient, s store.Store, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if s == nil {
		return nil, ErrNilStore
	}

	m := &Manager{
		config:    cfg,
		client:    client,
		creds:     credentials{store: s},
		clock:     clockwork.NewRealClock(),
		logger:    log.G,
		navigator: nopNavigator{},
		poolSize:  defaultPoolSize,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.activity = NewActivityTracker(m.clock, m.logger)
	m.sessionLog.Store(m.logger)

	pool, err := ants.NewPool(m.poolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			m.log().Error().Interface("panic", p).Msg("session task panicked")
		}),
	)
	if err != nil {
		return nil, err
	}
	m.pool = pool
	return m, nil
}

// Config 当前配置
func (m *Manager) Config() Config {
	return m.config
}

func (m *Manager) log() *log.Logger {
	return m.sessionLog.Load()
}

// Login 登录并开始会话；凭据错误返回带 invalid_credentials 原因码的 401
func (m *Manager) Login(ctx context.Context, username, password string) (*Credential, error) {
	cred, err := m.client.Login(ctx, username, password)
	if err != nil {
		if errors.IsUnauthorized(err) {
			m.log().Info().Str("username", username).Msg("login rejected")
			return nil, errors.UnauthorizedWithReason(ReasonInvalidCredentials.String(), "invalid credentials").WithCause(err)
		}
		return nil, err
	}
	if cred == nil || !jwt.IsWellFormed(cred.Token) {
		return nil, errors.BadGateway("login response carries no usable token")
	}

	if err := m.StartSession(ctx, cred); err != nil {
		return nil, err
	}
	return cred.clone(), nil
}

// StartSession 保存凭据、重置活动时间并启动监控
func (m *Manager) StartSession(ctx context.Context, cred *Credential) error {
	if cred == nil || cred.Token == "" {
		return errors.BadRequest("credential without token")
	}

	m.Stop()
	if err := m.creds.save(ctx, cred); err != nil {
		return err
	}

	m.begin()
	m.Start(context.WithoutCancel(ctx))
	m.log().Info().Msg("session started")
	m.emit(ctx, EventStarted, "")
	return nil
}

// Resume 进程重启后接管存储中仍然有效的 token；无效 token 会被清除
func (m *Manager) Resume(ctx context.Context) (bool, error) {
	token, err := m.creds.token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	if jwt.IsExpired(token, m.clock.Now()) {
		m.log().Info().Msg("stored token no longer valid, clearing")
		return false, m.creds.clear(ctx)
	}

	m.Stop()
	m.begin()
	m.Start(context.WithoutCancel(ctx))
	m.log().Info().Msg("session resumed")
	m.emit(ctx, EventResumed, "")
	return true, nil
}

// begin 进入新会话：重置活动时间、过期标记和 session_id
func (m *Manager) begin() {
	m.activity.Reset()

	m.mu.Lock()
	m.expired = false
	m.lastReason = ""
	m.mu.Unlock()

	id := uuid.NewString()
	m.sessionID.Store(id)
	m.sessionLog.Store(m.logger.Child("session_id", id))
}

// Logout 主动登出
func (m *Manager) Logout(ctx context.Context) bool {
	return m.expire(ctx, ReasonLoggedOut, 0, false)
}

// IsLoggedIn 存在结构完整且未过期的 token
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	token := m.Token(ctx)
	return token != "" && !jwt.IsExpired(token, m.clock.Now())
}

// Token 当前 token，未登录时为空
func (m *Manager) Token(ctx context.Context) string {
	token, err := m.creds.token(ctx)
	if err != nil {
		m.log().Warn().Err(err).Msg("read token failed")
		return ""
	}
	return token
}

// User 存储中的用户信息，未登录时为 nil
func (m *Manager) User(ctx context.Context) map[string]any {
	user, err := m.creds.user(ctx)
	if err != nil {
		m.log().Warn().Err(err).Msg("read user failed")
		return nil
	}
	return user
}

// CurrentUser 从后端获取当前用户并更新存储；401 会结束会话
func (m *Manager) CurrentUser(ctx context.Context) (map[string]any, error) {
	token := m.Token(ctx)
	if token == "" {
		return nil, errors.Unauthorized("not logged in")
	}

	user, err := m.client.Me(ctx, token)
	if err != nil {
		if errors.IsUnauthorized(err) {
			m.Expire(ReasonSessionExpired)
		}
		return nil, err
	}
	if err := m.creds.save(ctx, &Credential{Token: token, User: user}); err != nil {
		return nil, err
	}
	return user, nil
}

// Start 启动检查循环、心跳循环和活动监听，已运行时不做任何事。
// 循环在 ctx 取消或 Stop 后退出。
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	epoch := m.epoch.Load()

	if m.source != nil {
		m.unsubscribe = m.source.Subscribe(m.onSignal)
	}

	go m.runLoop(runCtx, epoch, m.config.TokenCheckInterval, m.checkSession)
	go m.runLoop(runCtx, epoch, m.config.HeartbeatInterval, m.sendHeartbeat)
}

// Stop 停止循环并移除监听；可重复调用，未启动时也安全。
// 不等待进行中的请求，它们的结果会被丢弃。
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	m.epoch.Add(1)
	if !m.running {
		return
	}

	m.running = false
	m.cancel()
	m.cancel = nil
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// stopIfCurrent 仅当 epoch 未变化时停止
func (m *Manager) stopIfCurrent(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch.Load() == epoch {
		m.stopLocked()
	}
}

// Running 循环是否在运行
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Close 停止会话监控并释放协程池，不清除凭据
func (m *Manager) Close() error {
	m.Stop()
	return m.pool.ReleaseTimeout(m.config.RequestTimeout)
}

// RecordActivity 记录一次用户活动
func (m *Manager) RecordActivity() {
	m.activity.RecordActivity()
}

// TimeSinceActivity 距最近活动的时长
func (m *Manager) TimeSinceActivity() time.Duration {
	return m.activity.TimeSinceActivity()
}

func (m *Manager) onSignal(s Signal) {
	if s.valid() {
		m.activity.RecordActivity()
	}
}
