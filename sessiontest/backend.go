// Package sessiontest 提供与真实后端行为一致的认证服务，用于集成测试和本地联调
package sessiontest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/heattrack/sessionkit/core/auth/jwt"
	"github.com/heattrack/sessionkit/errors"
)

const (
	msgInvalidCredentials = "Identifiants invalides"
	msgMissingToken       = "Accès non autorisé, token manquant"
	msgUserNotFound       = "Utilisateur non trouvé"
)

// User 后端用户
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	passwordHash []byte
}

// Counters 各接口被调用次数
type Counters struct {
	Login   int64
	Refresh int64
	Me      int64
	Ping    int64
}

// Backend 认证后端：/auth/login、/auth/refresh-token、/auth/me，以及受保护的 /ping
type Backend struct {
	signer     *jwt.Signer
	now        func() time.Time
	inactivity time.Duration
	cost       int
	secret     string
	ttl        time.Duration

	mu     sync.RWMutex
	users  map[string]User
	nextID int64

	login, refresh, me, ping atomic.Int64

	engine *gin.Engine
	server *httptest.Server
}

type Option func(*Backend)

// WithNow 替换时间来源，与客户端的 FakeClock 共用
func WithNow(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// WithTTL token 有效期
func WithTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.ttl = ttl
	}
}

// WithInactivity 服务端空闲上限，刷新接口允许两倍
func WithInactivity(d time.Duration) Option {
	return func(b *Backend) {
		b.inactivity = d
	}
}

// WithBcryptCost 密码哈希强度
func WithBcryptCost(cost int) Option {
	return func(b *Backend) {
		b.cost = cost
	}
}

func WithSecret(secret string) Option {
	return func(b *Backend) {
		b.secret = secret
	}
}

// New 创建后端，尚未监听；调用 Start 或直接使用 Handler
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		now:        time.Now,
		inactivity: 20 * time.Minute,
		cost:       bcrypt.MinCost,
		secret:     "sessiontest-secret",
		ttl:        20 * time.Minute,
		users:      make(map[string]User),
	}
	for _, opt := range opts {
		opt(b)
	}

	signer, err := jwt.NewSigner(jwt.SignerConfig{Secret: b.secret, TTL: b.ttl, Issuer: "sessiontest"},
		jwt.WithNow(func() time.Time { return b.now() }))
	if err != nil {
		return nil, err
	}
	b.signer = signer
	b.engine = b.routes()
	return b, nil
}

// Start 在随机端口上监听
func (b *Backend) Start() *Backend {
	b.server = httptest.NewServer(b.engine)
	return b
}

// URL 带 /api 前缀的基础地址
func (b *Backend) URL() string {
	return b.server.URL + "/api"
}

func (b *Backend) Close() {
	if b.server != nil {
		b.server.Close()
	}
}

func (b *Backend) Handler() http.Handler {
	return b.engine
}

// AddUser 注册用户，密码以 bcrypt 存储
func (b *Backend) AddUser(username, password, role string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return User{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u := User{ID: b.nextID, Username: username, Role: role, passwordHash: hash}
	b.users[username] = u
	return u, nil
}

// RemoveUser 删除用户，之后该用户的 token 均返回 401
func (b *Backend) RemoveUser(username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, username)
}

// Issue 直接签发 token，lastActivity 可指定
func (b *Backend) Issue(username string, lastActivity time.Time) (string, error) {
	u, ok := b.user(username)
	if !ok {
		return "", errors.NotFound("user %q not found", username)
	}
	return b.signer.Sign(jwt.Claims{ID: u.ID, Username: u.Username, Role: u.Role, LastActivity: lastActivity.UnixMilli()})
}

// Counters 调用计数快照
func (b *Backend) Counters() Counters {
	return Counters{
		Login:   b.login.Load(),
		Refresh: b.refresh.Load(),
		Me:      b.me.Load(),
		Ping:    b.ping.Load(),
	}
}

func (b *Backend) user(username string) (User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[username]
	return u, ok
}

func bearer(c *gin.Context) string {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}
