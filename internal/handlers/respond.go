package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/todo-app/internal/errors"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/logger"
	"github.com/yukikurage/todo-app/internal/middleware"
	"github.com/yukikurage/todo-app/internal/services"
)

// responder renders localized FormResult failures.
type responder struct {
	catalog *i18n.Catalog
}

func (r responder) t(c *gin.Context, key string) string {
	return r.catalog.T(middleware.GetLocale(c), key)
}

// formError renders a failure carrying only a general message.
func (r responder) formError(c *gin.Context, status int, key string) {
	apierrors.RespondFormError(c, status, nil, r.t(c, key))
}

// validation renders a service ValidationError as 422.
func (r responder) validation(c *gin.Context, verr *services.ValidationError) {
	locale := middleware.GetLocale(c)
	var form string
	if verr.Form != "" {
		form = r.catalog.T(locale, verr.Form)
	}
	apierrors.RespondFormError(c, http.StatusUnprocessableEntity, r.catalog.Fields(locale, verr.Fields), form)
}

// bindError renders a request that failed to bind. Validator failures are
// reported per field; anything else is a malformed request.
func (r responder) bindError(c *gin.Context, err error) {
	if fields, ok := r.catalog.ValidationFields(middleware.GetLocale(c), err); ok {
		apierrors.RespondFormError(c, http.StatusUnprocessableEntity, fields, "")
		return
	}
	r.formError(c, http.StatusBadRequest, i18n.KeyInvalidRequest)
}

// internal logs err and renders the generic message only.
func (r responder) internal(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.FromContext(c.Request.Context()).Error("request failed", slog.String("error", err.Error()))
	r.formError(c, http.StatusInternalServerError, i18n.KeyInternal)
}

// serviceError maps errors shared by every service.
func (r responder) serviceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		r.validation(c, verr)
	case errors.Is(err, services.ErrAuthenticationRequired):
		r.formError(c, http.StatusUnauthorized, i18n.KeyUnauthorized)
	default:
		r.internal(c, err)
	}
}
