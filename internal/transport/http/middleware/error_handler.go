// Package middleware file: internal/transport/http/middleware/error_handler.go
package middleware

import (
	"RecordAegis/aegauth"
	"RecordAegis/internal/core/port"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorHandlingMiddleware 是一个Gin中间件，用于集中处理错误。
// 处理器中通过 c.Error(err) 附加的错误在这里统一映射为状态码和错误信封。
func ErrorHandlingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// 只处理最后一个错误，它通常是根本原因
		lastError := c.Errors.Last()
		err := lastError.Err

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]gin.H, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, gin.H{"field": fe.Field(), "tag": fe.Tag()})
			}
			respondError(c, http.StatusBadRequest, "请求参数验证失败", gin.H{"fields": fields})
			return
		}

		var pe *port.ValidationError
		if errors.As(err, &pe) {
			respondError(c, http.StatusBadRequest, pe.Error(), gin.H{"param": pe.Param})
			return
		}

		if lastError.IsType(gin.ErrorTypeBind) {
			respondError(c, http.StatusBadRequest, "无效的请求参数: "+err.Error(), nil)
			return
		}

		switch {
		case errors.Is(err, port.ErrCollectionNotFound), errors.Is(err, port.ErrRecordNotFound):
			respondError(c, http.StatusNotFound, err.Error(), nil)

		case errors.Is(err, port.ErrFieldNotFound):
			respondError(c, http.StatusBadRequest, err.Error(), nil)

		case errors.Is(err, aegauth.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, err.Error(), nil)

		default:
			logger.Error("[HTTP] 请求处理失败",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", RequestIDFrom(c)),
				zap.Error(err),
			)
			respondError(c, http.StatusInternalServerError, "服务器内部错误", nil)
		}
	}
}

func respondError(c *gin.Context, code int, msg string, data gin.H) {
	body := gin.H{"status": "error", "error": msg}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}
