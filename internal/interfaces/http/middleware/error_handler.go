package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	apperrors "github.com/easayliu/tg-autorename/internal/shared/errors"
	"github.com/easayliu/tg-autorename/pkg/logger"
	"github.com/easayliu/tg-autorename/pkg/utils"
	"github.com/gin-gonic/gin"
)

// ErrorHandlerMiddleware 统一错误处理中间件
// 捕获handler中设置的错误,自动转换为合适的HTTP响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var serviceErr *apperrors.ServiceError
		if errors.As(err, &serviceErr) {
			utils.ErrorWithStatus(c, mapErrorCodeToHTTPStatus(serviceErr.Code), string(serviceErr.Code), serviceErr.Message)
			return
		}
		// 未知错误,返回500
		logger.Error("Unhandled request error", "path", c.Request.URL.Path, "error", err)
		utils.ErrorWithStatus(c, http.StatusInternalServerError, string(apperrors.ErrorCodeInternalError), "internal server error")
	}
}

// mapErrorCodeToHTTPStatus 将业务错误码映射到HTTP状态码
func mapErrorCodeToHTTPStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrorCodeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrorCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RecoverMiddleware 恢复中间件 - 捕获panic并转换为500错误
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("HTTP handler panicked", "path", c.Request.URL.Path, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
				utils.ErrorWithStatus(c, http.StatusInternalServerError, string(apperrors.ErrorCodeInternalError), "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// LoggerMiddleware 请求日志
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).Round(time.Microsecond),
			"client_ip", c.ClientIP())
	}
}
