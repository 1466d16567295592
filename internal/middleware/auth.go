package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-app/internal/constants"
	apierrors "github.com/yukikurage/todo-app/internal/errors"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/session"
)

// RequireAuth checks if the request carries a valid session token, either in
// the session cookie or as a Bearer header.
func RequireAuth(manager *session.Manager, catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if v, ok := sessions.Default(c).Get(constants.SessionKeyToken).(string); ok {
				token = v
			}
		}

		if token == "" {
			apierrors.Unauthorized(c, catalog.T(GetLocale(c), i18n.KeyUnauthorized))
			c.Abort()
			return
		}

		claims, err := manager.Parse(token)
		if err != nil {
			apierrors.Unauthorized(c, catalog.T(GetLocale(c), i18n.KeyUnauthorized))
			c.Abort()
			return
		}
		userID, _ := claims.UserID()

		// Store user ID and claims in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetClaims retrieves the verified session claims from context
func GetClaims(c *gin.Context) (*session.Claims, bool) {
	v, exists := c.Get(constants.ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*session.Claims)
	return claims, ok
}
