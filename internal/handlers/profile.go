package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/dto"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/logger"
	"github.com/yukikurage/todo-app/internal/metrics"
	"github.com/yukikurage/todo-app/internal/middleware"
	"github.com/yukikurage/todo-app/internal/services"
	"github.com/yukikurage/todo-app/internal/session"
)

// ProfileHandler serves the profile page operations.
type ProfileHandler struct {
	responder
	profileService *services.ProfileService
	sessions       *session.Manager
}

func NewProfileHandler(profileService *services.ProfileService, manager *session.Manager, catalog *i18n.Catalog) *ProfileHandler {
	return &ProfileHandler{
		responder:      responder{catalog: catalog},
		profileService: profileService,
		sessions:       manager,
	}
}

// GetProfile returns the current user
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.formError(c, http.StatusNotFound, i18n.KeyNotFound)
			return
		}
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{OK: true, User: dto.ToUserDTO(*user)})
}

// UpdateProfile applies display name and avatar changes from a multipart
// form (displayName, avatarUrl, avatarFile) and refreshes the session.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type UpdateProfileRequest struct {
		DisplayName string `json:"displayName" form:"displayName"`
		AvatarURL   string `json:"avatarUrl" form:"avatarUrl"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	upload, err := readAvatarUpload(c)
	if err != nil {
		h.internal(c, err)
		return
	}

	result, err := h.profileService.UpdateProfile(c.Request.Context(), userID, services.ProfileInput{
		DisplayName: req.DisplayName,
		Avatar:      upload,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		h.respondProfileError(c, upload != nil, err)
		return
	}
	if upload != nil {
		metrics.AvatarUploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
	}

	h.refreshSession(c, result)

	c.JSON(http.StatusOK, dto.ProfileResponse{
		OK:          true,
		Message:     h.t(c, i18n.KeyProfileUpdated),
		DisplayName: result.DisplayName,
		AvatarURL:   result.AvatarURL,
	})
}

// readAvatarUpload reads the optional avatarFile part. Oversized files are
// not read; their declared size is enough to reject them.
func readAvatarUpload(c *gin.Context) (*services.AvatarUpload, error) {
	header, err := c.FormFile("avatarFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size == 0 {
		return nil, nil
	}

	upload := &services.AvatarUpload{
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Filename: header.Filename,
	}
	if header.Size > constants.MaxAvatarSize {
		return upload, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	upload.Content, err = io.ReadAll(io.LimitReader(f, constants.MaxAvatarSize+1))
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// refreshSession reissues the token so later requests see the new values.
// Failures are logged; the profile itself is already saved.
func (h *ProfileHandler) refreshSession(c *gin.Context, result *services.ProfileResult) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return
	}

	log := logger.FromContext(c.Request.Context())
	token, err := h.sessions.Refresh(claims, result.DisplayName, result.AvatarURL)
	if err != nil {
		log.Warn("failed to refresh session token", "error", err)
		return
	}

	s := sessions.Default(c)
	s.Set(constants.SessionKeyToken, token)
	if err := s.Save(); err != nil {
		log.Warn("failed to save refreshed session", "error", err)
		return
	}
	c.Header("X-Session-Token", token)
}

func (h *ProfileHandler) respondProfileError(c *gin.Context, uploaded bool, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		if uploaded {
			metrics.AvatarUploadsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		}
		h.validation(c, verr)
	case errors.Is(err, services.ErrAvatarUploadFailed):
		metrics.AvatarUploadsTotal.WithLabelValues(metrics.ResultError).Inc()
		_ = c.Error(err)
		h.formError(c, http.StatusInternalServerError, i18n.KeyUploadFailed)
	case errors.Is(err, services.ErrUserNotFound):
		h.formError(c, http.StatusNotFound, i18n.KeyNotFound)
	default:
		h.serviceError(c, err)
	}
}
