package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-app/internal/dto"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/metrics"
	"github.com/yukikurage/todo-app/internal/middleware"
	"github.com/yukikurage/todo-app/internal/services"
	"github.com/yukikurage/todo-app/internal/utils"
)

// TodoHandler exposes the owner-scoped todo operations.
type TodoHandler struct {
	responder
	todoService *services.TodoService
}

func NewTodoHandler(todoService *services.TodoService, catalog *i18n.Catalog) *TodoHandler {
	return &TodoHandler{
		responder:   responder{catalog: catalog},
		todoService: todoService,
	}
}

type todoRequest struct {
	Text     string `json:"text" form:"text"`
	DueDate  string `json:"dueDate" form:"dueDate"`
	Priority string `json:"priority" form:"priority"`
}

func (r todoRequest) input() services.TodoInput {
	return services.TodoInput{Text: r.Text, DueDate: r.DueDate, Priority: r.Priority}
}

// ListTodos returns the current user's todos (?status=all|active|completed)
func (h *TodoHandler) ListTodos(c *gin.Context) {
	list, ok := h.list(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToTodoListResponse(list))
}

// AddTodo creates a todo for the current user
func (h *TodoHandler) AddTodo(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req todoRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	todo, err := h.todoService.AddTodo(c.Request.Context(), userID, req.input())
	if err != nil {
		h.respondTodoError(c, "add", err)
		return
	}
	metrics.ObserveTodo("add", metrics.ResultOK)

	todoDTO := dto.ToTodoDTO(*todo)
	h.respondMutation(c, http.StatusCreated, dto.TodoResponse{OK: true, Todo: &todoDTO, Affected: 1})
}

// UpdateTodo overwrites text, due date and priority
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	todoID, _ := middleware.GetTodoID(c)

	var req todoRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	affected, err := h.todoService.UpdateTodo(c.Request.Context(), userID, todoID, req.input())
	if err != nil {
		h.respondTodoError(c, "update", err)
		return
	}
	h.respondAffected(c, "update", affected)
}

// ToggleCompleted sets the completed flag
func (h *TodoHandler) ToggleCompleted(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	todoID, _ := middleware.GetTodoID(c)

	type ToggleRequest struct {
		Completed *bool `json:"completed" form:"completed" binding:"required"`
	}

	var req ToggleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	affected, err := h.todoService.ToggleCompleted(c.Request.Context(), userID, todoID, *req.Completed)
	if err != nil {
		h.respondTodoError(c, "toggle", err)
		return
	}
	h.respondAffected(c, "toggle", affected)
}

// DeleteTodo removes a todo
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	todoID, _ := middleware.GetTodoID(c)

	affected, err := h.todoService.DeleteTodo(c.Request.Context(), userID, todoID)
	if err != nil {
		h.respondTodoError(c, "delete", err)
		return
	}
	h.respondAffected(c, "delete", affected)
}

// SuggestTodos proposes todos extracted from free text. Nothing is saved.
func (h *TodoHandler) SuggestTodos(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type SuggestRequest struct {
		Text string `json:"text" form:"text"`
	}

	var req SuggestRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	suggestions, err := h.todoService.SuggestTodos(c.Request.Context(), userID, req.Text)
	if err != nil {
		if errors.Is(err, services.ErrSuggestionsUnavailable) {
			h.formError(c, http.StatusServiceUnavailable, i18n.KeySuggestionsUnavailable)
			return
		}
		h.respondTodoError(c, "suggest", err)
		return
	}

	c.JSON(http.StatusOK, dto.TodoSuggestionsResponse{OK: true, Suggestions: suggestions})
}

// list loads the page selected by the query string.
func (h *TodoHandler) list(c *gin.Context) (*services.TodoList, bool) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	list, err := h.todoService.ListTodos(c.Request.Context(), userID, services.ListTodosInput{
		Status:   c.Query("status"),
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		h.serviceError(c, err)
		return nil, false
	}
	return list, true
}

func (h *TodoHandler) respondAffected(c *gin.Context, operation string, affected int64) {
	if affected == 0 {
		metrics.ObserveTodo(operation, metrics.ResultNotFound)
		h.formError(c, http.StatusNotFound, i18n.KeyNotFound)
		return
	}
	metrics.ObserveTodo(operation, metrics.ResultOK)

	resp := dto.TodoResponse{OK: true, Affected: affected}
	if operation == "delete" {
		resp.Message = h.t(c, i18n.KeyTodoDeleted)
	}
	h.respondMutation(c, http.StatusOK, resp)
}

// respondMutation attaches the refreshed list when ?refresh=true.
func (h *TodoHandler) respondMutation(c *gin.Context, status int, resp dto.TodoResponse) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		list, ok := h.list(c)
		if !ok {
			return
		}
		todos := dto.ToTodoListResponse(list)
		resp.Todos = &todos
	}
	c.JSON(status, resp)
}

func (h *TodoHandler) respondTodoError(c *gin.Context, operation string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		metrics.ObserveTodo(operation, metrics.ResultInvalid)
	case errors.Is(err, services.ErrAuthenticationRequired):
		metrics.ObserveTodo(operation, metrics.ResultDenied)
	default:
		metrics.ObserveTodo(operation, metrics.ResultError)
	}
	h.serviceError(c, err)
}
