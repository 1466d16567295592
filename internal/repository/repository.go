package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-app/internal/models"
)

// TodoRepository defines the interface for todo data access.
// Every method is scoped to the owning user.
type TodoRepository interface {
	// Create inserts a new todo
	Create(ctx context.Context, todo *models.Todo) error

	// List retrieves the owner's todos with filtering and pagination
	List(ctx context.Context, userID uint64, filter TodoFilter) ([]models.Todo, TodoCounts, error)

	// Update overwrites text, due date and priority; returns rows affected
	Update(ctx context.Context, userID, todoID uint64, fields TodoFields) (int64, error)

	// SetCompleted sets the completed flag; returns rows affected
	SetCompleted(ctx context.Context, userID, todoID uint64, completed bool) (int64, error)

	// Delete removes the todo; returns rows affected
	Delete(ctx context.Context, userID, todoID uint64) (int64, error)
}

// TodoStatus selects which todos a list returns
type TodoStatus string

const (
	TodoStatusAll       TodoStatus = "all"
	TodoStatusActive    TodoStatus = "active"
	TodoStatusCompleted TodoStatus = "completed"
)

// TodoFilter holds filtering options for listing todos
type TodoFilter struct {
	Status   TodoStatus
	Page     int
	PageSize int
}

// TodoCounts are the owner's counters, independent of the status filter
type TodoCounts struct {
	Total     int64
	Active    int64
	Completed int64
}

// TodoFields are the mutable columns of a todo
type TodoFields struct {
	Text     string
	DueDate  time.Time
	Priority models.Priority
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by (lowercased) email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByIdentifier finds a user whose email or username matches identifier
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error

	// UpdateProfile replaces display name and avatar URL
	UpdateProfile(ctx context.Context, id uint64, displayName string, avatarURL *string) error
}
