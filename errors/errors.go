package errors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
)

const (
	UnknownCode       = 500
	MetadataSeparator = ", "
	MetadataPrefix    = "metadata={"
	MetadataSuffix    = "}"
	CausePrefix       = "cause="

	// MetadataReason 会话原因码（session_expired、invalid_credentials 等）
	MetadataReason = "reason"
	// MetadataErrorType 后端返回的 errorType 字段
	MetadataErrorType = "errorType"
)

// Status 错误状态：HTTP 状态码、消息和元数据
type Status struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error 结构化错误，携带状态码、消息、元数据和错误链
type Error struct {
	Status
	cause error
}

func (e *Error) Error() string {
	var msg strings.Builder

	msg.WriteString("code=")
	msg.WriteString(strconv.Itoa(e.Code))
	msg.WriteString(MetadataSeparator)
	msg.WriteString("message=")
	msg.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		msg.WriteString(MetadataSeparator)
		msg.WriteString(MetadataPrefix)
		first := true
		for k, v := range e.Metadata {
			if !first {
				msg.WriteString(", ")
			}
			msg.WriteString(k)
			msg.WriteByte('=')
			msg.WriteString(v)
			first = false
		}
		msg.WriteString(MetadataSuffix)
	}

	if e.cause != nil {
		msg.WriteString(MetadataSeparator)
		msg.WriteString(CausePrefix)
		msg.WriteString(e.cause.Error())
	}

	return msg.String()
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// WithMetadata 追加元数据，返回新实例
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}

	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithReason 设置会话原因码
func (e *Error) WithReason(reason string) *Error {
	if reason == "" {
		return e
	}
	return e.WithMetadata(map[string]string{MetadataReason: reason})
}

// WithCause 设置底层错误，返回新实例
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}

	err := e.clone()
	err.cause = cause
	return err
}

func (e *Error) clone() *Error {
	var metadata map[string]string
	if len(e.Metadata) > 0 {
		metadata = make(map[string]string, len(e.Metadata))
		maps.Copy(metadata, e.Metadata)
	}

	return &Error{
		Status: Status{
			Code:     e.Code,
			Message:  e.Message,
			Metadata: metadata,
		},
		cause: e.cause,
	}
}

// Is 状态码和消息都相同时视为同一错误
func (e *Error) Is(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return e.Code == ge.Code && e.Message == ge.Message
	}
	return false
}

// GetCode 返回状态码
func (e *Error) GetCode() int {
	return e.Code
}

// GetMessage 返回错误消息
func (e *Error) GetMessage() string {
	return e.Message
}

// GetMetadata 返回元数据副本
func (e *Error) GetMetadata() map[string]string {
	if len(e.Metadata) == 0 {
		return nil
	}

	result := make(map[string]string, len(e.Metadata))
	maps.Copy(result, e.Metadata)
	return result
}

// Reason 返回会话原因码，未设置时为空
func (e *Error) Reason() string {
	return e.Metadata[MetadataReason]
}

// New 创建错误
func New(code int, format string, args ...any) *Error {
	var message string
	if len(args) == 0 {
		message = format
	} else {
		message = fmt.Sprintf(format, args...)
	}

	return &Error{
		Status: Status{
			Code:    code,
			Message: message,
		},
	}
}

// NewWithMetadata 创建带元数据的错误
func NewWithMetadata(code int, metadata map[string]string, format string, args ...any) *Error {
	err := New(code, format, args...)
	if len(metadata) > 0 {
		err.Metadata = make(map[string]string, len(metadata))
		maps.Copy(err.Metadata, metadata)
	}
	return err
}

// FromError 将任意错误转换为 *Error，会沿错误链查找
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}

	return New(UnknownCode, "%v", err).WithCause(err)
}

// FromStatus 根据 HTTP 响应状态码创建错误
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return New(status, "%s", message)
}

// Wrap 包装错误并保留错误链，err 为 nil 时返回 nil
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}

	return New(code, format, args...).WithCause(err)
}

// Code 返回错误链中第一个 *Error 的状态码
// nil 返回 0，非结构化错误返回 UnknownCode
func Code(err error) int {
	if err == nil {
		return 0
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return UnknownCode
}

// IsUnauthorized 错误链中是否存在 401
func IsUnauthorized(err error) bool {
	return Code(err) == http.StatusUnauthorized
}
