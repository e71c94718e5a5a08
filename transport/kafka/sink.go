package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/heattrack/sessionkit/log"
	"github.com/heattrack/sessionkit/session"
)

// MessageWriter *kafka.Writer 满足
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Sink 把会话事件写入 Kafka，key 为 session ID
type Sink struct {
	writer MessageWriter
	logger *log.Logger
}

var _ session.EventSink = (*Sink)(nil)

// NewSink writer 为 nil 时使用 client 的异步生产者
func NewSink(client *Client, writer MessageWriter) *Sink {
	s := &Sink{writer: writer, logger: log.G}
	if client != nil {
		s.logger = client.logger
		if writer == nil {
			s.writer = client.AsyncProducer(client.config.Topic)
		}
	}
	return s
}

func (s *Sink) Emit(ctx context.Context, e session.Event) {
	value, err := json.Marshal(e)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode session event failed")
		return
	}

	msg := kafka.Message{
		Key:   []byte(e.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
		Time: e.At,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Str("type", string(e.Type)).Msg("publish session event failed")
	}
}
