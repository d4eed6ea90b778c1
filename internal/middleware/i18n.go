package middleware

import (
	"simplelink/internal/i18n"

	"github.com/gin-gonic/gin"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
)

const contextLocalizer = "i18n.localizer"

// I18nMiddleware 根据 Accept-Language 选择语言
func I18nMiddleware(translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextLocalizer, translator.Localizer(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// Localizer 返回当前请求的本地化器，未设置时为 nil
func Localizer(c *gin.Context) *goi18n.Localizer {
	v, ok := c.Get(contextLocalizer)
	if !ok {
		return nil
	}
	localizer, _ := v.(*goi18n.Localizer)
	return localizer
}
