package repository

import (
	"context"

	"github.com/yukikurage/todo-app/internal/database"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/utils"
	"gorm.io/gorm"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create inserts a new todo
func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// List retrieves the owner's todos, newest first, plus the owner's counters
func (r *GormTodoRepository) List(ctx context.Context, userID uint64, filter TodoFilter) ([]models.Todo, TodoCounts, error) {
	var counts TodoCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Todo{}).Scopes(database.OwnedBy(userID)).
		Count(&counts.Total).Error; err != nil {
		return nil, counts, err
	}
	if err := db.Model(&models.Todo{}).Scopes(database.OwnedBy(userID)).
		Where("completed = ?", true).
		Count(&counts.Completed).Error; err != nil {
		return nil, counts, err
	}
	counts.Active = counts.Total - counts.Completed

	query := db.Model(&models.Todo{}).Scopes(database.OwnedBy(userID))
	switch filter.Status {
	case TodoStatusActive:
		query = query.Where("completed = ?", false)
	case TodoStatusCompleted:
		query = query.Where("completed = ?", true)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	todos := []models.Todo{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&todos).Error; err != nil {
		return nil, counts, err
	}

	return todos, counts, nil
}

// Update overwrites text, due date and priority of an owned todo
func (r *GormTodoRepository) Update(ctx context.Context, userID, todoID uint64, fields TodoFields) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("user_id = ? AND id = ?", userID, todoID).
		Updates(map[string]interface{}{
			"text":     fields.Text,
			"due_date": fields.DueDate,
			"priority": fields.Priority,
		})
	return res.RowsAffected, res.Error
}

// SetCompleted sets the completed flag of an owned todo
func (r *GormTodoRepository) SetCompleted(ctx context.Context, userID, todoID uint64, completed bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("user_id = ? AND id = ?", userID, todoID).
		Update("completed", completed)
	return res.RowsAffected, res.Error
}

// Delete removes an owned todo
func (r *GormTodoRepository) Delete(ctx context.Context, userID, todoID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, todoID).
		Delete(&models.Todo{})
	return res.RowsAffected, res.Error
}
