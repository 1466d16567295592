package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/dto"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/metrics"
	"github.com/yukikurage/todo-app/internal/middleware"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/services"
	"github.com/yukikurage/todo-app/internal/session"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	responder
	authService *services.AuthService
	sessions    *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, manager *session.Manager, catalog *i18n.Catalog) *AuthHandler {
	return &AuthHandler{
		responder:   responder{catalog: catalog},
		authService: authService,
		sessions:    manager,
	}
}

// Register creates a new account. It does not sign the user in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email           string `json:"email" form:"email"`
		Username        string `json:"username" form:"username"`
		DisplayName     string `json:"displayName" form:"displayName"`
		Password        string `json:"password" form:"password"`
		ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	}

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		DisplayName:     req.DisplayName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondAuthError(c, "register", err)
		return
	}

	metrics.ObserveAuth("register", metrics.ResultOK)
	c.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"message": h.t(c, i18n.KeyRegistered),
		"user":    dto.ToUserDTO(*user),
	})
}

// Login authenticates by email or username and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Identifier string `json:"identifier" form:"identifier"`
		Password   string `json:"password" form:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.respondAuthError(c, "login", err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}

	metrics.ObserveAuth("login", metrics.ResultOK)
	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"user":  dto.ToUserDTO(*user),
		"token": token,
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		h.internal(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{OK: true, Message: h.t(c, i18n.KeyLoggedOut)})
}

// GetCurrentUser returns the session payload of an account that still exists.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	claims, exists := middleware.GetClaims(c)
	if !exists {
		h.formError(c, http.StatusUnauthorized, i18n.KeyUnauthorized)
		return
	}

	userID, _ := claims.UserID()
	if _, err := h.authService.GetUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			s := sessions.Default(c)
			s.Clear()
			_ = s.Save()
			h.formError(c, http.StatusUnauthorized, i18n.KeyUnauthorized)
			return
		}
		h.internal(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{OK: true, User: dto.ToSessionUserDTO(claims)})
}

// ForgotPassword is step one of the reset flow: it only confirms that an
// account matches the identifier.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Identifier string `json:"identifier" form:"identifier"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	if _, err := h.authService.FindUserForReset(c.Request.Context(), req.Identifier); err != nil {
		h.respondAuthError(c, "forgot_password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"message":    h.t(c, i18n.KeyResetUserFound),
		"identifier": req.Identifier,
	})
}

// ResetPassword is step two of the reset flow.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Identifier      string `json:"identifier" form:"identifier"`
		Password        string `json:"password" form:"password"`
		ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), services.ResetPasswordInput{
		Identifier:      req.Identifier,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondAuthError(c, "reset_password", err)
		return
	}

	metrics.ObserveAuth("reset_password", metrics.ResultOK)
	c.JSON(http.StatusOK, dto.MessageResponse{OK: true, Message: h.t(c, i18n.KeyPasswordReset)})
}

// startSession issues a token for user and stores it in the session.
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) (string, bool) {
	token, err := h.sessions.Issue(session.IdentityFromUser(user))
	if err != nil {
		h.internal(c, err)
		return "", false
	}

	s := sessions.Default(c)
	s.Set(constants.SessionKeyToken, token)
	if err := s.Save(); err != nil {
		h.internal(c, err)
		return "", false
	}
	return token, true
}

func (h *AuthHandler) respondAuthError(c *gin.Context, event string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		metrics.ObserveAuth(event, metrics.ResultInvalid)
		h.validation(c, verr)
	case errors.Is(err, services.ErrEmailTaken):
		metrics.ObserveAuth(event, metrics.ResultConflict)
		h.formError(c, http.StatusConflict, i18n.KeyEmailExists)
	case errors.Is(err, services.ErrUsernameTaken):
		metrics.ObserveAuth(event, metrics.ResultConflict)
		h.formError(c, http.StatusConflict, i18n.KeyUsernameExists)
	case errors.Is(err, services.ErrInvalidCredentials):
		metrics.ObserveAuth(event, metrics.ResultDenied)
		h.formError(c, http.StatusUnauthorized, i18n.KeyInvalidCredentials)
	case errors.Is(err, services.ErrResetUserNotFound):
		metrics.ObserveAuth(event, metrics.ResultNotFound)
		h.formError(c, http.StatusNotFound, i18n.KeyResetUserNotFound)
	default:
		metrics.ObserveAuth(event, metrics.ResultError)
		h.internal(c, err)
	}
}
