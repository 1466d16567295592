package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/repository"
	"gorm.io/gorm"
)

var ErrAvatarUploadFailed = errors.New("failed to store avatar")

// AvatarStorage persists avatar images and maps them to public URLs.
type AvatarStorage interface {
	Save(ctx context.Context, filename string, content []byte) (string, error)
	Delete(ctx context.Context, publicURL string) error
	IsManaged(publicURL string) bool
}

// ProfileService applies display name and avatar changes
type ProfileService struct {
	userRepo repository.UserRepository
	avatars  AvatarStorage
	now      func() time.Time
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repository.UserRepository, avatars AvatarStorage) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		avatars:  avatars,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to name uploaded files.
func (s *ProfileService) WithClock(now func() time.Time) *ProfileService {
	s.now = now
	return s
}

// AvatarUpload is an uploaded image. It is ignored when Size is 0.
type AvatarUpload struct {
	Content  []byte
	Size     int64
	MimeType string
	Filename string
}

// ProfileInput holds the optional changes of one profile update
type ProfileInput struct {
	DisplayName string
	Avatar      *AvatarUpload
	AvatarURL   string
}

// ProfileResult is the persisted state after an update
type ProfileResult struct {
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

var avatarExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true,
}

var avatarMimeExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// avatarExtension prefers a recognized suffix of the original filename and
// falls back to the mime type.
func avatarExtension(filename, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if avatarExtensions[ext] {
		return ext
	}
	if ext, ok := avatarMimeExtensions[mimeType]; ok {
		return ext
	}
	return constants.DefaultAvatarExt
}

func validAvatarURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// GetProfile returns the current user
func (s *ProfileService) GetProfile(ctx context.Context, userID uint64) (*models.User, error) {
	if userID == 0 {
		return nil, ErrAuthenticationRequired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfile validates and applies display name and avatar changes. An
// upload wins over a URL. Replaced local avatar files are removed best effort.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint64, input ProfileInput) (*ProfileResult, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}

	displayName := strings.TrimSpace(input.DisplayName)
	if utf8.RuneCountInString(displayName) > constants.MaxDisplayNameLength {
		verr.Add("displayName", i18n.KeyDisplayNameTooLong)
	}

	upload := input.Avatar
	if upload != nil && upload.Size <= 0 {
		upload = nil
	}

	avatarURL := strings.TrimSpace(input.AvatarURL)
	switch {
	case upload != nil:
		if !strings.HasPrefix(upload.MimeType, "image/") {
			verr.Add("avatarUrl", i18n.KeyInvalidFileType)
		} else if upload.Size > constants.MaxAvatarSize {
			verr.Add("avatarUrl", i18n.KeyFileTooLarge)
		}
	case avatarURL != "":
		if !validAvatarURL(avatarURL) {
			verr.Add("avatarUrl", i18n.KeyInvalidURL)
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	var newAvatar *string
	switch {
	case upload != nil:
		filename := fmt.Sprintf("%d-%d.%s", userID, s.now().UnixMilli(), avatarExtension(upload.Filename, upload.MimeType))
		publicURL, err := s.avatars.Save(ctx, filename, upload.Content)
		if err != nil {
			slog.ErrorContext(ctx, "failed to save avatar file",
				slog.Uint64("user_id", userID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("%w: %v", ErrAvatarUploadFailed, err)
		}
		newAvatar = &publicURL
	case avatarURL != "":
		newAvatar = &avatarURL
	}

	if displayName == "" && newAvatar == nil {
		return &ProfileResult{DisplayName: current.DisplayName, AvatarURL: current.AvatarURL}, nil
	}

	result := ProfileResult{DisplayName: current.DisplayName, AvatarURL: current.AvatarURL}
	if displayName != "" {
		result.DisplayName = displayName
	}
	if newAvatar != nil {
		result.AvatarURL = newAvatar
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, result.DisplayName, result.AvatarURL); err != nil {
		if upload != nil {
			s.removeAvatar(ctx, *newAvatar)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if upload != nil && current.AvatarURL != nil && *current.AvatarURL != *newAvatar {
		s.removeAvatar(ctx, *current.AvatarURL)
	}

	return &result, nil
}

// removeAvatar deletes a locally managed avatar, logging failures.
func (s *ProfileService) removeAvatar(ctx context.Context, publicURL string) {
	if !s.avatars.IsManaged(publicURL) {
		return
	}
	if err := s.avatars.Delete(ctx, publicURL); err != nil {
		slog.WarnContext(ctx, "failed to delete old avatar file",
			slog.String("avatar_url", publicURL),
			slog.String("error", err.Error()),
		)
	}
}
