package session

import (
	"context"
	"time"
)

// EventType 生命周期事件类型
type EventType string

const (
	EventStarted   EventType = "started"
	EventResumed   EventType = "resumed"
	EventRefreshed EventType = "refreshed"
	EventEnded     EventType = "ended"
)

// Event 会话生命周期事件，不携带 token
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Reason    Reason    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// EventSink 接收生命周期事件；Emit 在会话的调用路径上执行，不应阻塞
type EventSink interface {
	Emit(ctx context.Context, e Event)
}

// EventSinkFunc 函数适配为 EventSink
type EventSinkFunc func(ctx context.Context, e Event)

func (f EventSinkFunc) Emit(ctx context.Context, e Event) {
	f(ctx, e)
}

func (m *Manager) emit(ctx context.Context, t EventType, reason Reason) {
	if m.sink == nil {
		return
	}
	m.sink.Emit(ctx, Event{
		Type:      t,
		SessionID: m.SessionID(),
		Reason:    reason,
		At:        m.clock.Now(),
	})
}

// SessionID 当前会话 ID，每次登录或恢复时重新生成
func (m *Manager) SessionID() string {
	id, _ := m.sessionID.Load().(string)
	return id
}
