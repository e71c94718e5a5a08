package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heattrack/sessionkit/errors"
)

const defaultSuccessMsg = "success"

// Response 统一响应结构
type Response[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data T      `json:"data,omitempty"`
}

// GinJSON 200 成功响应
func GinJSON(c *gin.Context, data any) {
	c.JSON(http.StatusOK, &Response[any]{
		Code: http.StatusOK,
		Msg:  defaultSuccessMsg,
		Data: data,
	})
}

// GinError 按错误码写入 HTTP 状态；非结构化错误视为 500
func GinError(c *gin.Context, err error) {
	e := errors.FromError(err)
	status := e.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, &Response[map[string]string]{
		Code: e.Code,
		Msg:  e.Message,
		Data: e.GetMetadata(),
	})
}
