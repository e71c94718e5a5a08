// sessionctl 在操作终端上运行会话管理器：恢复或登录会话、提供本地状态服务，
// 并把标准输入当作操作员活动。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/heattrack/sessionkit/app"
	"github.com/heattrack/sessionkit/config"
	khttp "github.com/heattrack/sessionkit/core/net/http"
	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/log/desensitize"
	"github.com/heattrack/sessionkit/session"
	"github.com/heattrack/sessionkit/store"
	thttp "github.com/heattrack/sessionkit/transport/http"
	"github.com/heattrack/sessionkit/transport/http/metrics"
	"github.com/heattrack/sessionkit/transport/http/middleware"
	"github.com/heattrack/sessionkit/transport/kafka"
	"github.com/heattrack/sessionkit/transport/websocket"
)

const envPrefix = "SESSIONCTL"

func main() {
	configFile := flag.String("config", "sessionctl.yaml", "config file")
	username := flag.String("username", os.Getenv(envPrefix+"_USERNAME"), "log in as this user when no session can be resumed")
	flag.Parse()

	if err := run(*configFile, *username, os.Getenv(envPrefix+"_PASSWORD")); err != nil {
		log.Fatal().Err(err).Msg("sessionctl stopped")
	}
}

func run(configFile, username, password string) error {
	var cfg Config
	if err := config.Load(&cfg,
		config.WithFile(configFile, ".", "/etc/sessionctl"),
		config.WithOptionalFile(),
		config.WithEnvPrefix(envPrefix),
	); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	log.SetGlobalLogger(logger)

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Store, logger.Child("component", "store"))
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	prom := metrics.New(metrics.WithGoCollector(), metrics.WithProcessCollector(), metrics.WithBuildInfoCollector())
	bus := session.NewBus()

	closes := []app.Option{
		app.WithClose("store", func(context.Context) error { return store.Close(st) }, 0),
	}

	opts := []session.Option{
		session.WithLogger(logger.Child("component", "session")),
		session.WithActivitySource(bus),
		session.WithMetrics(session.NewMetrics(prom.Registry())),
		session.WithNavigator(session.NavigatorFunc(func(reason session.Reason) {
			logger.Warn().Str("reason", reason.String()).Msg("session ended, back to login")
		})),
	}
	if cfg.Events.Enabled {
		kc, err := kafka.New(&cfg.Events.Kafka, kafka.WithLogger(logger.Child("component", "events")))
		if err != nil {
			return err
		}
		opts = append(opts, session.WithEventSink(kafka.NewSink(kc, nil)))
		closes = append(closes, app.WithClose("events", func(context.Context) error { return kc.Close() }, 0))
	}

	// 认证客户端不带拦截器，业务客户端带
	auth := khttp.NewAuthClient(khttp.New(cfg.Backend.BaseURL, khttp.WithTimeout(cfg.Backend.Timeout)),
		khttp.WithAuthPaths(cfg.Backend.Paths))
	manager, err := session.New(cfg.Session.Config(), auth, st, opts...)
	if err != nil {
		return err
	}
	paths := auth.Paths()
	api := khttp.New(cfg.Backend.BaseURL,
		khttp.WithTimeout(cfg.Backend.Timeout),
		khttp.WithTransport(khttp.NewInterceptor(manager, khttp.WithSkipPaths(paths.Login, paths.Refresh))),
	)

	if err := startSession(ctx, manager, username, password, logger); err != nil {
		_ = manager.Close()
		return err
	}

	appOpts := append(closes,
		app.WithLogger(logger),
		app.WithClose("session", func(context.Context) error { return manager.Close() }, 0),
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, 0),
		app.WithRunner("console", (&console{manager: manager, bus: bus, api: api, in: os.Stdin, out: os.Stdout}).Run),
	)
	if cfg.Status.Enabled {
		appOpts = append(appOpts, app.WithServer(statusServer(cfg.Status, manager, bus, prom, logger)))
	}
	return app.New(appOpts...).Start()
}

func newLogger(cfg LogConfig) (*log.Logger, error) {
	opts := []log.Option{
		log.WithLevel(log.ParseLevel(cfg.Level)),
		log.WithDesensitize(desensitize.NewBuiltinHook()),
		log.WithField("service", "sessionctl"),
	}
	if cfg.ToFile {
		return log.NewMulti(cfg.File, opts...)
	}
	return log.New(opts...), nil
}

// startSession 优先恢复已存会话，否则在提供了用户名时登录
func startSession(ctx context.Context, m *session.Manager, username, password string, logger *log.Logger) error {
	resumed, err := m.Resume(ctx)
	if err != nil {
		return err
	}
	if resumed || username == "" {
		if !resumed {
			logger.Info().Msg("no stored session, use the login command")
		}
		return nil
	}

	if _, err := m.Login(ctx, username, password); err != nil {
		logger.Error().Err(err).Str("username", username).Msg("login failed")
	}
	return nil
}

func statusServer(cfg StatusConfig, m *session.Manager, bus *session.Bus, prom *metrics.Prometheus, logger *log.Logger) *thttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(middleware.RecoveryConfig{Logger: logger}),
		middleware.GinLoggerWithConfig(middleware.LoggerConfig{
			Logger:    logger.Child("component", "status"),
			SkipPaths: []string{cfg.Health.Path, cfg.Metrics.Path},
		}),
		middleware.Cors(cfg.Cors),
	)

	thttp.RegisterSession(engine, m)
	engine.GET(cfg.FeedPath, gin.WrapH(websocket.NewFeed(cfg.Websocket, bus, logger.Child("component", "feed"))))

	return thttp.NewServer(cfg.Addr, engine,
		thttp.WithMeta(thttp.Meta{Name: "session-status"}),
		thttp.WithMetrics(cfg.Metrics, prom.Registry()),
		thttp.WithHealth(cfg.Health),
		thttp.WithLogger(logger),
	)
}
