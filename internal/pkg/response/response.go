package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`              // 业务错误码（0 表示成功）
	Message string      `json:"message,omitempty"` // 提示信息
	Data    interface{} `json:"data"`              // 实际数据（可能为空对象 {}）
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, apperrors.Success, "", data)
}

// Created 创建资源成功（201）
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, apperrors.Success, "", data)
}

// Accepted 已受理、异步处理中（202）
func Accepted(c *gin.Context, data interface{}) {
	write(c, http.StatusAccepted, apperrors.Success, "", data)
}

// ErrorWithCode 使用业务错误码响应
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	write(c, apperrors.GetHTTPStatus(code), code, apperrors.FormatError(code, details...), nil)
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, details string) {
	ErrorWithCode(c, apperrors.ErrBadRequest, details)
}

// NotFound 404 错误
func NotFound(c *gin.Context, details string) {
	ErrorWithCode(c, apperrors.ErrNotFound, details)
}

// HandleError 统一错误处理，非 AppError 按内部错误返回
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code := apperrors.ExtractCode(err)
	ErrorWithCode(c, code, apperrors.GetDetails(err))
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}
