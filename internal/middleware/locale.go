package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/i18n"
)

// Locale resolves the request locale from ?lang=, the lang cookie and
// Accept-Language, in that order. An explicit ?lang= is remembered in the
// cookie.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query(constants.LocaleQueryParameter)
		cookie, _ := c.Cookie(constants.LocaleCookieName)

		locale := i18n.Negotiate(query, cookie, c.GetHeader("Accept-Language"))
		if query != "" && query == locale && cookie != locale {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(constants.LocaleCookieName, locale, 365*24*60*60, "/", "", false, false)
		}

		c.Set(constants.ContextKeyLocale, locale)
		c.Next()
	}
}

// GetLocale returns the negotiated locale, or the default one.
func GetLocale(c *gin.Context) string {
	if v, ok := c.Get(constants.ContextKeyLocale); ok {
		if locale, ok := v.(string); ok && locale != "" {
			return locale
		}
	}
	return i18n.DefaultLocale
}
