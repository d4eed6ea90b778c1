package middleware

import (
	"net/http"

	"simplelink/internal/apperrors"
	"simplelink/internal/i18n"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler 全局错误中间件，将 c.Errors 渲染为 {"error": "..."}
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperrors.From(c.Errors.Last().Err)
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error("请求处理失败",
				zap.String("path", c.Request.URL.Path),
				zap.Error(appErr),
			)
		}

		msg := i18n.Translate(Localizer(c), appErr.Key, appErr.Message)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": msg})
	}
}
