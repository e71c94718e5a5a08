package errors

// 会话与后端交互中用到的状态码构造函数

func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(401, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}

func BadGateway(format string, args ...any) *Error {
	return New(502, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(503, format, args...)
}

// UnauthorizedWithReason 401 并附带会话原因码
func UnauthorizedWithReason(reason string, format string, args ...any) *Error {
	return Unauthorized(format, args...).WithReason(reason)
}
