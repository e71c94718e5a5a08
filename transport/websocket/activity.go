package websocket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/session"
)

// Publisher 接收交互信号，*session.Bus 即满足
type Publisher interface {
	Publish(s session.Signal)
}

// Config 连接参数
type Config struct {
	ReadTimeout    time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `json:"writeTimeout" mapstructure:"writeTimeout"`
	PingInterval   time.Duration `json:"pingInterval" mapstructure:"pingInterval"`
	MaxMessageSize int64         `json:"maxMessageSize" mapstructure:"maxMessageSize"`
	AllowedOrigins []string      `json:"allowedOrigins" mapstructure:"allowedOrigins"`
	// SignalRate 每个连接每秒接受的信号数，超出的被丢弃
	SignalRate  float64 `json:"signalRate" mapstructure:"signalRate"`
	SignalBurst int     `json:"signalBurst" mapstructure:"signalBurst"`
}

func (c *Config) SetDefaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.ReadTimeout {
		c.PingInterval = c.ReadTimeout * 9 / 10
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 512
	}
	if c.SignalRate <= 0 {
		c.SignalRate = 10
	}
	if c.SignalBurst <= 0 {
		c.SignalBurst = 20
	}
}

// Feed 把浏览器端的交互事件转成会话活动。
// 每条文本消息是一个信号名，如 "pointer_down"；未知信号被忽略。
type Feed struct {
	config    Config
	publisher Publisher
	logger    *log.Logger
	upgrader  websocket.Upgrader
}

// NewFeed 创建 Feed
func NewFeed(cfg Config, publisher Publisher, logger *log.Logger) *Feed {
	cfg.SetDefaults()
	if logger == nil {
		logger = log.G
	}

	f := &Feed{config: cfg, publisher: publisher, logger: logger}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     f.checkOrigin,
	}
	return f
}

// ServeHTTP 升级连接并读取信号直到断开
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn().Err(err).Msg("activity feed upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(f.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go f.ping(conn, done)

	limiter := rate.NewLimiter(rate.Limit(f.config.SignalRate), f.config.SignalBurst)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.logger.Debug().Err(err).Msg("activity feed closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		_ = conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		if !limiter.Allow() {
			continue
		}
		f.publisher.Publish(session.Signal(strings.TrimSpace(string(data))))
	}
}

func (f *Feed) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(f.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// checkOrigin 未配置白名单时只允许同源
func (f *Feed) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(f.config.AllowedOrigins) == 0 {
		return strings.HasSuffix(origin, "://"+r.Host)
	}
	for _, allowed := range f.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
