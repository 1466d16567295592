package dto

import (
	"time"

	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/repository"
	"github.com/yukikurage/todo-app/internal/services"
)

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID        uint64          `json:"id"`
	Text      string          `json:"text"`
	Completed bool            `json:"completed"`
	DueDate   string          `json:"due_date"`
	Priority  models.Priority `json:"priority"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TodoCountsDTO holds the owner's counters
type TodoCountsDTO struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

// TodoListResponse represents a page of todos
type TodoListResponse struct {
	OK         bool          `json:"ok"`
	Todos      []TodoDTO     `json:"todos"`
	Status     string        `json:"status"`
	Counts     TodoCountsDTO `json:"counts"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// TodoResponse is the success shape of a single-todo mutation. Todos is
// filled when the client asked for the refreshed list.
type TodoResponse struct {
	OK       bool              `json:"ok"`
	Todo     *TodoDTO          `json:"todo,omitempty"`
	Affected int64             `json:"affected,omitempty"`
	Message  string            `json:"message,omitempty"`
	Todos    *TodoListResponse `json:"todos,omitempty"`
}

// TodoSuggestionsResponse lists unsaved suggestions
type TodoSuggestionsResponse struct {
	OK          bool                      `json:"ok"`
	Suggestions []services.TodoSuggestion `json:"suggestions"`
}

// Conversion functions

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	return TodoDTO{
		ID:        todo.ID,
		Text:      todo.Text,
		Completed: todo.Completed,
		DueDate:   todo.DueDate.UTC().Format(constants.DueDateLayout),
		Priority:  todo.Priority,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

// ToTodoListResponse converts a service list to TodoListResponse
func ToTodoListResponse(list *services.TodoList) TodoListResponse {
	items := make([]TodoDTO, len(list.Todos))
	for i, todo := range list.Todos {
		items[i] = ToTodoDTO(todo)
	}

	return TodoListResponse{
		OK:         true,
		Todos:      items,
		Status:     string(list.Status),
		Counts:     ToTodoCountsDTO(list.Counts),
		Page:       list.Page,
		PageSize:   list.PageSize,
		TotalPages: totalPages(filteredTotal(list), list.PageSize),
	}
}

// ToTodoCountsDTO converts repository counters
func ToTodoCountsDTO(counts repository.TodoCounts) TodoCountsDTO {
	return TodoCountsDTO{
		Total:     counts.Total,
		Active:    counts.Active,
		Completed: counts.Completed,
	}
}

func filteredTotal(list *services.TodoList) int64 {
	switch list.Status {
	case repository.TodoStatusActive:
		return list.Counts.Active
	case repository.TodoStatusCompleted:
		return list.Counts.Completed
	default:
		return list.Counts.Total
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
