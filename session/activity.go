package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/heattrack/sessionkit/log"
)

// Signal 用户交互信号
type Signal string

const (
	SignalPointerDown Signal = "pointer_down"
	SignalPointerMove Signal = "pointer_move"
	SignalKeyPress    Signal = "key_press"
	SignalScroll      Signal = "scroll"
	SignalTouchStart  Signal = "touch_start"
)

// Signals 会被记录为活动的全部信号
var Signals = []Signal{SignalPointerDown, SignalPointerMove, SignalKeyPress, SignalScroll, SignalTouchStart}

func (s Signal) valid() bool {
	switch s {
	case SignalPointerDown, SignalPointerMove, SignalKeyPress, SignalScroll, SignalTouchStart:
		return true
	}
	return false
}

// ActivitySource 交互信号来源；Subscribe 返回取消订阅函数
type ActivitySource interface {
	Subscribe(fn func(Signal)) (unsubscribe func())
}

// ActivityTracker 记录最近一次活动时间
type ActivityTracker struct {
	clock clockwork.Clock
	last  atomic.Int64 // unix 纳秒

	logger    *log.Logger
	sometimes rate.Sometimes
}

// NewActivityTracker 以当前时间作为最近活动时间
func NewActivityTracker(clock clockwork.Clock, logger *log.Logger) *ActivityTracker {
	t := &ActivityTracker{
		clock:     clock,
		logger:    logger,
		sometimes: rate.Sometimes{Interval: 10 * time.Second},
	}
	t.Reset()
	return t
}

// RecordActivity 把最近活动时间设为 now，不会回退
func (t *ActivityTracker) RecordActivity() {
	now := t.clock.Now().UnixNano()
	for {
		last := t.last.Load()
		if now <= last || t.last.CompareAndSwap(last, now) {
			break
		}
	}
	t.sometimes.Do(func() {
		t.logger.Debug().Time("at", time.Unix(0, now)).Msg("user activity recorded")
	})
}

// TimeSinceActivity 距最近活动的时长，不为负
func (t *ActivityTracker) TimeSinceActivity() time.Duration {
	d := time.Duration(t.clock.Now().UnixNano() - t.last.Load())
	if d < 0 {
		return 0
	}
	return d
}

// LastActivity 最近活动时间
func (t *ActivityTracker) LastActivity() time.Time {
	return time.Unix(0, t.last.Load())
}

// Reset 登录时无条件重置为 now
func (t *ActivityTracker) Reset() {
	t.last.Store(t.clock.Now().UnixNano())
}

// Bus 进程内信号源，嵌入方把 UI 事件发布到这里
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Signal)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Signal))}
}

// Subscribe 注册监听，返回的函数可重复调用
func (b *Bus) Subscribe(fn func(Signal)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish 同步分发信号
func (b *Bus) Publish(s Signal) {
	b.mu.RLock()
	fns := make([]func(Signal), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Subscribers 当前监听数
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
