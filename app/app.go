package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrClosePanic     = errors.New("close function panicked")
)

// Runner 长期运行的任务，ctx 取消时应返回
type Runner func(ctx context.Context) error

// Application 管理服务、后台任务和关闭函数的生命周期
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	logger          *log.Logger
	shutdownTimeout time.Duration
	signals         []os.Signal
	servers         []transport.Server
	runners         []namedRunner
	closeFuncs      []CloseFunc
	closeTimeout    time.Duration
	mu              sync.RWMutex
	started         bool
}

type namedRunner struct {
	name string
	fn   Runner
}

// CloseFunc 带超时的关闭函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

type Option func(*Application)

// WithContext 设置根上下文
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(app *Application) {
		if logger != nil {
			app.logger = logger
		}
	}
}

// WithShutdownTimeout 服务关闭超时
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 关闭函数的默认超时
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

// WithSignals 触发优雅关闭的信号
func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = append([]os.Signal(nil), signals...)
		}
	}
}

func WithServer(server transport.Server) Option {
	return func(app *Application) {
		if server != nil {
			app.servers = append(app.servers, server)
		}
	}
}

// WithRunner 添加后台任务；任务返回错误会触发整体关闭
func WithRunner(name string, fn Runner) Option {
	return func(app *Application) {
		if fn != nil {
			app.runners = append(app.runners, namedRunner{name: name, fn: fn})
		}
	}
}

// WithClose 添加关闭函数，timeout 为 0 时使用默认值
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if fn == nil {
			app.logger.Warn().Str("name", name).Msg("nil close function ignored")
			return
		}
		if timeout == 0 {
			timeout = app.closeTimeout
		}
		app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	}
}

func New(options ...Option) *Application {
	app := &Application{
		logger:          log.G,
		shutdownTimeout: 10 * time.Second,
		closeTimeout:    10 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		opt(app)
	}
	return app
}

// RegisterClose 启动后也可以注册
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	if timeout == 0 {
		timeout = app.closeTimeout
	}
	app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Start 运行所有服务和任务，阻塞直到收到信号、Stop 或任一任务出错；
// 随后执行关闭函数
func (app *Application) Start() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := append([]transport.Server(nil), app.servers...)
	runners := append([]namedRunner(nil), app.runners...)
	signals := append([]os.Signal(nil), app.signals...)
	app.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	eg, egCtx := errgroup.WithContext(app.ctx)

	for _, server := range servers {
		eg.Go(func() error {
			if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})
	}

	for _, r := range runners {
		eg.Go(func() error {
			err := r.fn(egCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				app.logger.Error().Err(err).Str("runner", r.name).Msg("runner failed")
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			app.logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
			return nil
		case <-egCtx.Done():
			if errors.Is(egCtx.Err(), context.Canceled) {
				return nil
			}
			return egCtx.Err()
		}
	})

	err := eg.Wait()
	app.runCloseTasks()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 触发优雅关闭
func (app *Application) Stop() {
	app.cancel()
}

// runCloseTasks 并发执行关闭函数
func (app *Application) runCloseTasks() {
	app.mu.RLock()
	closeFuncs := append([]CloseFunc(nil), app.closeFuncs...)
	app.mu.RUnlock()

	var eg errgroup.Group
	for _, c := range closeFuncs {
		eg.Go(func() error {
			return app.runCloseTask(c)
		})
	}
	if err := eg.Wait(); err != nil {
		app.logger.Error().Err(err).Msg("some close functions failed")
	}
}

func (app *Application) runCloseTask(c CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Error().Interface("panic", r).Str("close", c.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- c.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			app.logger.Error().Err(err).Str("close", c.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		app.logger.Warn().Str("close", c.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

// Info 应用状态
func (app *Application) Info() ApplicationInfo {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return ApplicationInfo{
		Started:     app.started,
		ServerCount: len(app.servers),
		RunnerCount: len(app.runners),
		CloseCount:  len(app.closeFuncs),
	}
}

type ApplicationInfo struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"server_count"`
	RunnerCount int  `json:"runner_count"`
	CloseCount  int  `json:"close_count"`
}
