package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-app/internal/constants"
	apierrors "github.com/yukikurage/todo-app/internal/errors"
	"github.com/yukikurage/todo-app/internal/i18n"
)

// RequireTodoID parses the :id path parameter. Malformed ids are reported
// as not found, the same as ids owned by someone else.
func RequireTodoID(catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || todoID == 0 {
			apierrors.NotFound(c, catalog.T(GetLocale(c), i18n.KeyNotFound))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTodoID, todoID)
		c.Next()
	}
}

// GetTodoID retrieves the todo ID parsed by RequireTodoID
func GetTodoID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyTodoID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
