package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already exists")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid identifier or password")
	ErrResetUserNotFound    = errors.New("no account matches the identifier")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// PasswordChangeNotifier tells a user their password was changed.
type PasswordChangeNotifier interface {
	PasswordChanged(ctx context.Context, user *models.User) error
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	notifier PasswordChangeNotifier
	validate *validator.Validate
}

// NewAuthService creates a new AuthService. notifier may be nil.
func NewAuthService(userRepo repository.UserRepository, notifier PasswordChangeNotifier) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		notifier: notifier,
		validate: validator.New(),
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email           string
	Username        string
	DisplayName     string
	Password        string
	ConfirmPassword string
}

// ResetPasswordInput is the second step of the password reset flow.
type ResetPasswordInput struct {
	Identifier      string
	Password        string
	ConfirmPassword string
}

// Register validates input, checks email then username uniqueness and stores
// the new account. It does not start a session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	verr := &ValidationError{}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Var(email, fmt.Sprintf("required,email,max=%d", constants.MaxEmailLength)); err != nil {
		verr.Add("email", i18n.KeyEmailInvalid)
	}

	username := strings.TrimSpace(input.Username)
	switch n := utf8.RuneCountInString(username); {
	case n < constants.MinUsernameLength:
		verr.Add("username", i18n.KeyUsernameMin)
	case n > constants.MaxUsernameLength:
		verr.Add("username", i18n.KeyUsernameMax)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	switch {
	case displayName == "":
		verr.Add("displayName", i18n.KeyDisplayNameRequired)
	case utf8.RuneCountInString(displayName) > constants.MaxDisplayNameLength:
		verr.Add("displayName", i18n.KeyDisplayNameTooLong)
	}

	validatePasswordPair(verr, input.Password, input.ConfirmPassword)

	if err := verr.Err(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateOwner(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// duplicateOwner resolves which unique column a concurrent registration
// claimed between the availability checks and the insert.
func (s *AuthService) duplicateOwner(ctx context.Context, email string) error {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Authenticate verifies credentials and returns the authenticated user.
// Every failure is reported as ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || utf8.RuneCountInString(password) < constants.MinPasswordLength {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindUserForReset confirms an account exists for identifier.
func (s *AuthService) FindUserForReset(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrResetUserNotFound
	}

	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ResetPassword re-resolves the identifier and overwrites the password hash.
// Steps one and two are not bound by a token; the identifier is checked again.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	user, err := s.FindUserForReset(ctx, input.Identifier)
	if err != nil {
		return err
	}

	verr := &ValidationError{}
	validatePasswordPair(verr, input.Password, input.ConfirmPassword)
	if err := verr.Err(); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.PasswordChanged(ctx, user); err != nil {
			slog.WarnContext(ctx, "failed to send password change notice",
				slog.Uint64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func validatePasswordPair(verr *ValidationError, password, confirm string) {
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		verr.Add("password", i18n.KeyPasswordMin)
	}
	if utf8.RuneCountInString(confirm) < constants.MinPasswordLength {
		verr.Add("confirmPassword", i18n.KeyPasswordMin)
	} else if password != confirm {
		verr.Add("confirmPassword", i18n.KeyPasswordsNoMatch)
	}
}
