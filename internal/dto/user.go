package dto

import (
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/session"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64  `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// UserResponse wraps a user in the success shape
type UserResponse struct {
	OK   bool    `json:"ok"`
	User UserDTO `json:"user"`
}

// ProfileResponse is the success shape of a profile update
type ProfileResponse struct {
	OK          bool    `json:"ok"`
	Message     string  `json:"message,omitempty"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// MessageResponse is a success shape carrying a localized message
type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}
}

// ToSessionUserDTO converts verified session claims to UserDTO
func ToSessionUserDTO(claims *session.Claims) UserDTO {
	id, _ := claims.UserID()
	return UserDTO{
		ID:          id,
		Email:       claims.Email,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	}
}
