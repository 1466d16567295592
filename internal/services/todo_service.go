package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/repository"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrSuggestionsUnavailable = errors.New("todo suggestions are not configured")
)

// TodoSuggester extracts todo candidates from free text.
type TodoSuggester interface {
	GenerateTodosFromText(ctx context.Context, text string, today time.Time) ([]GeneratedTodo, error)
}

// TodoService validates todo input and enforces owner scoping
type TodoService struct {
	todoRepo  repository.TodoRepository
	suggester TodoSuggester
	now       func() time.Time
}

// NewTodoService creates a new TodoService. suggester may be nil.
func NewTodoService(todoRepo repository.TodoRepository, suggester TodoSuggester) *TodoService {
	return &TodoService{
		todoRepo:  todoRepo,
		suggester: suggester,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to decide what "today" is.
func (s *TodoService) WithClock(now func() time.Time) *TodoService {
	s.now = now
	return s
}

// TodoInput is the raw form input of an add or edit
type TodoInput struct {
	Text     string
	DueDate  string
	Priority string
}

// ListTodosInput represents filters for listing todos
type ListTodosInput struct {
	Status   string
	Page     int
	PageSize int
}

// TodoList is one page of todos plus the owner's counters
type TodoList struct {
	Todos    []models.Todo
	Counts   repository.TodoCounts
	Status   repository.TodoStatus
	Page     int
	PageSize int
}

// TodoSuggestion is a validated, unsaved todo proposed from free text
type TodoSuggestion struct {
	Text     string          `json:"text"`
	DueDate  string          `json:"due_date"`
	Priority models.Priority `json:"priority"`
}

// Today returns the current UTC calendar day at midnight.
func (s *TodoService) Today() time.Time {
	return utcMidnight(s.now())
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validateTodo checks every field and reports all failures together.
func (s *TodoService) validateTodo(input TodoInput) (repository.TodoFields, error) {
	var fields repository.TodoFields
	verr := &ValidationError{}

	text := strings.TrimSpace(input.Text)
	switch {
	case text == "":
		verr.Add("text", i18n.KeyTextRequired)
	case utf8.RuneCountInString(text) > constants.MaxTodoTextLength:
		verr.Add("text", i18n.KeyTextTooLong)
	}
	fields.Text = text

	dueDate := strings.TrimSpace(input.DueDate)
	if dueDate == "" {
		verr.Add("dueDate", i18n.KeyDueDateRequired)
	} else if due, err := time.ParseInLocation(constants.DueDateLayout, dueDate, time.UTC); err != nil {
		verr.Add("dueDate", i18n.KeyDueDateInvalid)
	} else if due.Before(s.Today()) {
		verr.Add("dueDate", i18n.KeyDueDatePast)
	} else {
		fields.DueDate = due
	}

	fields.Priority = models.PriorityMedium
	if input.Priority != "" {
		p := models.Priority(input.Priority)
		if !p.Valid() {
			verr.Add("priority", i18n.KeyPriorityInvalid)
		}
		fields.Priority = p
	}

	return fields, verr.Err()
}

// AddTodo validates input and inserts a new todo owned by ownerID
func (s *TodoService) AddTodo(ctx context.Context, ownerID uint64, input TodoInput) (*models.Todo, error) {
	if ownerID == 0 {
		return nil, ErrAuthenticationRequired
	}

	fields, err := s.validateTodo(input)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Text:      fields.Text,
		Completed: false,
		DueDate:   fields.DueDate,
		Priority:  fields.Priority,
		UserID:    ownerID,
		CreatedAt: s.now(),
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// UpdateTodo overwrites text, due date and priority of an owned todo.
// It returns the number of rows changed; 0 means missing or not owned.
func (s *TodoService) UpdateTodo(ctx context.Context, ownerID, todoID uint64, input TodoInput) (int64, error) {
	if ownerID == 0 {
		return 0, ErrAuthenticationRequired
	}

	fields, err := s.validateTodo(input)
	if err != nil {
		return 0, err
	}

	affected, err := s.todoRepo.Update(ctx, ownerID, todoID, fields)
	if err != nil {
		return 0, fmt.Errorf("failed to update todo: %w", err)
	}
	return affected, nil
}

// ToggleCompleted sets the completed flag of an owned todo
func (s *TodoService) ToggleCompleted(ctx context.Context, ownerID, todoID uint64, completed bool) (int64, error) {
	if ownerID == 0 {
		return 0, ErrAuthenticationRequired
	}

	affected, err := s.todoRepo.SetCompleted(ctx, ownerID, todoID, completed)
	if err != nil {
		return 0, fmt.Errorf("failed to toggle todo: %w", err)
	}
	return affected, nil
}

// DeleteTodo removes an owned todo
func (s *TodoService) DeleteTodo(ctx context.Context, ownerID, todoID uint64) (int64, error) {
	if ownerID == 0 {
		return 0, ErrAuthenticationRequired
	}

	affected, err := s.todoRepo.Delete(ctx, ownerID, todoID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}
	return affected, nil
}

// ListTodos returns the owner's todos, newest first
func (s *TodoService) ListTodos(ctx context.Context, ownerID uint64, input ListTodosInput) (*TodoList, error) {
	if ownerID == 0 {
		return nil, ErrAuthenticationRequired
	}

	status := repository.TodoStatus(input.Status)
	switch status {
	case repository.TodoStatusActive, repository.TodoStatusCompleted:
	default:
		status = repository.TodoStatusAll
	}

	todos, counts, err := s.todoRepo.List(ctx, ownerID, repository.TodoFilter{
		Status:   status,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return &TodoList{
		Todos:    todos,
		Counts:   counts,
		Status:   status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}, nil
}

// SuggestTodos asks the suggester for todos hidden in text. Suggestions are
// normalized so each one would pass AddTodo; nothing is saved.
func (s *TodoService) SuggestTodos(ctx context.Context, ownerID uint64, text string) ([]TodoSuggestion, error) {
	if ownerID == 0 {
		return nil, ErrAuthenticationRequired
	}
	if s.suggester == nil {
		return nil, ErrSuggestionsUnavailable
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fieldError("text", i18n.KeyTextRequired)
	}

	today := s.Today()
	generated, err := s.suggester.GenerateTodosFromText(ctx, text, today)
	if err != nil {
		return nil, fmt.Errorf("failed to generate todos: %w", err)
	}
	if len(generated) > constants.MaxAIGeneratedTodos {
		generated = generated[:constants.MaxAIGeneratedTodos]
	}

	suggestions := make([]TodoSuggestion, 0, len(generated))
	for _, g := range generated {
		fields, err := s.validateTodo(TodoInput{Text: g.Text, DueDate: g.DueDate, Priority: g.Priority})
		var verr *ValidationError
		if err != nil && !errors.As(err, &verr) {
			return nil, err
		}
		if verr != nil {
			if verr.Has("text") {
				continue
			}
			if verr.Has("dueDate") {
				fields.DueDate = today
			}
			if verr.Has("priority") {
				fields.Priority = models.PriorityMedium
			}
		}

		suggestions = append(suggestions, TodoSuggestion{
			Text:     fields.Text,
			DueDate:  fields.DueDate.Format(constants.DueDateLayout),
			Priority: fields.Priority,
		})
	}

	return suggestions, nil
}
