package handler

import (
	"simplelink/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册全部 API 与跳转路由；apiLimiter 只作用于 /api，跳转路径不限流
func RegisterRoutes(
	router *gin.Engine,
	urlHandler *ShortLinkHandler,
	authHandler *AuthHandler,
	authMiddleware gin.HandlerFunc,
	apiLimiter gin.HandlerFunc,
) {
	api := router.Group("/api")
	api.Use(apiLimiter)
	api.GET("/health", urlHandler.HealthCheck)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/check-first-user", authHandler.CheckFirstUser)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/shorten", urlHandler.CreateShortLink)
		protected.GET("/links", urlHandler.GetAllLinks)
		protected.PATCH("/links/:id", urlHandler.UpdateLink)
		protected.DELETE("/links/:id", urlHandler.DeleteLink)
		protected.GET("/links/:id/clicks", urlHandler.GetClickStats)
		protected.GET("/links/:id/sources", urlHandler.GetSourceStats)
	}

	router.GET("/:short_code", urlHandler.RedirectToOriginal)

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrLinkNotFound)
	})
}
