package middleware

import (
	"strings"

	"simplelink/internal/apperrors"
	auth "simplelink/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// 上下文中保存的用户信息键
const (
	ContextUserID  = "user_id"
	ContextEmail   = "email"
	ContextIsAdmin = "is_admin"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c)
			return
		}

		// 提取Bearer token
		scheme, tokenString, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			abortUnauthorized(c)
			return
		}

		// 将用户信息存入上下文
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.IsAdmin)

		c.Next()
	}
}

// CurrentUserID 返回认证中间件写入的用户 ID
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func abortUnauthorized(c *gin.Context) {
	_ = c.Error(apperrors.ErrUnauthorized)
	c.Abort()
}
