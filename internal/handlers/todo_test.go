package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/todo-app/internal/dto"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/services"
)

func (suite *HandlerTestSuite) TestTodos_Unauthorized() {
	w := suite.do(http.MethodGet, "/api/todos", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodPost, "/api/todos", map[string]string{"text": "x", "dueDate": "2026-03-10"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	var count int64
	suite.db.Model(&models.Todo{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *HandlerTestSuite) TestAddTodo_Success() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")

	w := suite.do(http.MethodPost, "/api/todos", map[string]string{
		"text":    "  Buy milk  ",
		"dueDate": "2026-03-10",
	}, suite.tokenFor(user))

	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.TodoResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotNil(response.Todo)
	assert.True(suite.T(), response.OK)
	assert.Equal(suite.T(), "Buy milk", response.Todo.Text)
	assert.Equal(suite.T(), "2026-03-10", response.Todo.DueDate)
	assert.Equal(suite.T(), models.PriorityMedium, response.Todo.Priority)
	assert.False(suite.T(), response.Todo.Completed)
	assert.Nil(suite.T(), response.Todos)

	var stored models.Todo
	suite.Require().NoError(suite.db.First(&stored, response.Todo.ID).Error)
	assert.Equal(suite.T(), user.ID, stored.UserID)
}

func (suite *HandlerTestSuite) TestAddTodo_RefreshList() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	suite.createTestTodo(user.ID, "existing", false)

	w := suite.do(http.MethodPost, "/api/todos?refresh=true", map[string]string{
		"text":     "Call mom",
		"dueDate":  "2026-03-11",
		"priority": "IMPORTANT",
	}, suite.tokenFor(user))

	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.TodoResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotNil(response.Todos)
	assert.Len(suite.T(), response.Todos.Todos, 2)
	assert.Equal(suite.T(), int64(2), response.Todos.Counts.Total)
}

func (suite *HandlerTestSuite) TestAddTodo_ValidationErrors() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")

	w := suite.do(http.MethodPost, "/api/todos?lang=ru", map[string]string{
		"text":     "   ",
		"dueDate":  "2026-03-09",
		"priority": "URGENT",
	}, suite.tokenFor(user))

	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)

	ok, fields, _ := suite.formResult(w)
	assert.False(suite.T(), ok)
	assert.Equal(suite.T(), []string{suite.catalog.T("ru", i18n.KeyTextRequired)}, fields["text"])
	assert.Equal(suite.T(), []string{suite.catalog.T("ru", i18n.KeyDueDatePast)}, fields["dueDate"])
	assert.Equal(suite.T(), []string{suite.catalog.T("ru", i18n.KeyPriorityInvalid)}, fields["priority"])

	var count int64
	suite.db.Model(&models.Todo{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *HandlerTestSuite) TestListTodos_StatusAndCounts() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	other := suite.createTestUser("b@example.com", "bob", "secret1")
	suite.createTestTodo(user.ID, "one", false)
	suite.createTestTodo(user.ID, "two", true)
	suite.createTestTodo(user.ID, "three", false)
	suite.createTestTodo(other.ID, "not mine", false)

	w := suite.do(http.MethodGet, "/api/todos?status=active", nil, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TodoListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "active", response.Status)
	assert.Len(suite.T(), response.Todos, 2)
	for _, todo := range response.Todos {
		assert.False(suite.T(), todo.Completed)
	}
	assert.Equal(suite.T(), dto.TodoCountsDTO{Total: 3, Active: 2, Completed: 1}, response.Counts)
	assert.Equal(suite.T(), 1, response.TotalPages)

	w = suite.do(http.MethodGet, "/api/todos?status=bogus&limit=2", nil, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "all", response.Status)
	assert.Len(suite.T(), response.Todos, 2)
	assert.Equal(suite.T(), 2, response.TotalPages)
}

func (suite *HandlerTestSuite) TestUpdateTodo() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	other := suite.createTestUser("b@example.com", "bob", "secret1")
	todo := suite.createTestTodo(user.ID, "draft", false)
	url := fmt.Sprintf("/api/todos/%d", todo.ID)
	payload := map[string]string{"text": "final", "dueDate": "2026-04-01", "priority": "EASY"}

	w := suite.do(http.MethodPut, url, payload, suite.tokenFor(other))
	suite.Require().Equal(http.StatusNotFound, w.Code)
	_, _, form := suite.formResult(w)
	assert.Equal(suite.T(), suite.catalog.T("en", i18n.KeyNotFound), form)

	w = suite.do(http.MethodPut, url, payload, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var stored models.Todo
	suite.Require().NoError(suite.db.First(&stored, todo.ID).Error)
	assert.Equal(suite.T(), "final", stored.Text)
	assert.Equal(suite.T(), models.PriorityEasy, stored.Priority)
	assert.Equal(suite.T(), "2026-04-01", stored.DueDate.UTC().Format("2006-01-02"))
}

func (suite *HandlerTestSuite) TestToggleCompleted() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	todo := suite.createTestTodo(user.ID, "toggle me", false)
	url := fmt.Sprintf("/api/todos/%d/completed", todo.ID)

	w := suite.do(http.MethodPatch, url, map[string]any{}, suite.tokenFor(user))
	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	_, fields, _ := suite.formResult(w)
	assert.Contains(suite.T(), fields, "completed")

	w = suite.do(http.MethodPatch, url, map[string]any{"completed": true}, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TodoResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), int64(1), response.Affected)

	var stored models.Todo
	suite.Require().NoError(suite.db.First(&stored, todo.ID).Error)
	assert.True(suite.T(), stored.Completed)
}

func (suite *HandlerTestSuite) TestDeleteTodo() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	other := suite.createTestUser("b@example.com", "bob", "secret1")
	todo := suite.createTestTodo(user.ID, "delete me", false)
	url := fmt.Sprintf("/api/todos/%d", todo.ID)

	w := suite.do(http.MethodDelete, "/api/todos/abc", nil, suite.tokenFor(user))
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.do(http.MethodDelete, url, nil, suite.tokenFor(other))
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var count int64
	suite.db.Model(&models.Todo{}).Where("id = ?", todo.ID).Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	w = suite.do(http.MethodDelete, url+"?refresh=true", nil, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TodoResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotNil(response.Todos)
	assert.Empty(suite.T(), response.Todos.Todos)
	assert.Equal(suite.T(), suite.catalog.T("en", i18n.KeyTodoDeleted), response.Message)

	suite.db.Model(&models.Todo{}).Where("id = ?", todo.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *HandlerTestSuite) TestSuggestTodos() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	suite.suggester.todos = []services.GeneratedTodo{
		{Text: "Book dentist", DueDate: "2026-03-20", Priority: "IMPORTANT"},
		{Text: "", DueDate: "2026-03-20", Priority: "EASY"},
		{Text: "Water plants", DueDate: "yesterday", Priority: "SOMEDAY"},
	}

	w := suite.do(http.MethodPost, "/api/todos/suggest", map[string]string{"text": "dentist, plants"}, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TodoSuggestionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Suggestions, 2)
	assert.Equal(suite.T(), services.TodoSuggestion{Text: "Book dentist", DueDate: "2026-03-20", Priority: models.PriorityImportant}, response.Suggestions[0])
	assert.Equal(suite.T(), services.TodoSuggestion{Text: "Water plants", DueDate: "2026-03-10", Priority: models.PriorityMedium}, response.Suggestions[1])

	var count int64
	suite.db.Model(&models.Todo{}).Count(&count)
	assert.Zero(suite.T(), count)
}
