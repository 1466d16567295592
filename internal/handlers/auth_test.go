package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/todo-app/internal/dto"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func (suite *HandlerTestSuite) TestRegister_Success() {
	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "New@Example.com",
		"username":        "newuser",
		"displayName":     "New User",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}, "")

	suite.Require().Equal(http.StatusCreated, w.Code)

	var response struct {
		OK      bool        `json:"ok"`
		Message string      `json:"message"`
		User    dto.UserDTO `json:"user"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response.OK)
	assert.Equal(suite.T(), "new@example.com", response.User.Email)
	assert.Equal(suite.T(), "New User", response.User.DisplayName)

	var stored models.User
	suite.Require().NoError(suite.db.Where("username = ?", "newuser").First(&stored).Error)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func (suite *HandlerTestSuite) TestRegister_ValidationErrors() {
	w := suite.do(http.MethodPost, "/api/auth/register?lang=ru", map[string]string{
		"email":           "not-an-email",
		"username":        "ab",
		"displayName":     "",
		"password":        "12345",
		"confirmPassword": "654321",
	}, "")

	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)

	ok, fields, _ := suite.formResult(w)
	assert.False(suite.T(), ok)
	assert.Equal(suite.T(), []string{suite.catalog.T("ru", i18n.KeyEmailInvalid)}, fields["email"])
	assert.Contains(suite.T(), fields, "username")
	assert.Contains(suite.T(), fields, "displayName")
	assert.Contains(suite.T(), fields, "password")
	assert.Equal(suite.T(), []string{suite.catalog.T("ru", i18n.KeyPasswordsNoMatch)}, fields["confirmPassword"])
}

func (suite *HandlerTestSuite) TestRegister_EmailTaken() {
	suite.createTestUser("taken@example.com", "taken", "secret1")

	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "taken@example.com",
		"username":        "taken",
		"displayName":     "Taken",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}, "")

	suite.Require().Equal(http.StatusConflict, w.Code)
	_, _, form := suite.formResult(w)
	assert.Equal(suite.T(), suite.catalog.T("en", i18n.KeyEmailExists), form)
}

func (suite *HandlerTestSuite) TestRegister_UsernameTaken() {
	suite.createTestUser("first@example.com", "shared", "secret1")

	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "second@example.com",
		"username":        "shared",
		"displayName":     "Second",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}, "")

	suite.Require().Equal(http.StatusConflict, w.Code)
	_, _, form := suite.formResult(w)
	assert.Equal(suite.T(), suite.catalog.T("en", i18n.KeyUsernameExists), form)
}

func (suite *HandlerTestSuite) TestLogin_SessionCookie() {
	suite.createTestUser("alice@example.com", "alice", "secret1")

	for _, identifier := range []string{"alice@example.com", "ALICE@example.com", "alice"} {
		w := suite.do(http.MethodPost, "/api/auth/login", map[string]string{
			"identifier": identifier,
			"password":   "secret1",
		}, "")
		suite.Require().Equal(http.StatusOK, w.Code, identifier)

		cookies := w.Result().Cookies()
		suite.Require().NotEmpty(cookies)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		me := suite.send(req, "")
		suite.Require().Equal(http.StatusOK, me.Code)

		var response dto.UserResponse
		suite.Require().NoError(json.Unmarshal(me.Body.Bytes(), &response))
		assert.Equal(suite.T(), "alice", response.User.Username)
	}
}

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.createTestUser("alice@example.com", "alice", "secret1")

	for _, payload := range []map[string]string{
		{"identifier": "alice", "password": "wrong-password"},
		{"identifier": "nobody", "password": "secret1"},
	} {
		w := suite.do(http.MethodPost, "/api/auth/login?lang=en", payload, "")
		suite.Require().Equal(http.StatusUnauthorized, w.Code)
		_, _, form := suite.formResult(w)
		assert.Equal(suite.T(), suite.catalog.T("en", i18n.KeyInvalidCredentials), form)
	}
}

func (suite *HandlerTestSuite) TestGetCurrentUser_Unauthorized() {
	w := suite.do(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestGetCurrentUser_DeletedAccount() {
	user := suite.createTestUser("gone@example.com", "gone", "secret1")
	token := suite.tokenFor(user)
	suite.Require().NoError(suite.db.Delete(&models.User{}, user.ID).Error)

	w := suite.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestLogout() {
	w := suite.do(http.MethodPost, "/api/auth/logout", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.MessageResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response.OK)
	assert.Equal(suite.T(), suite.catalog.T("en", i18n.KeyLoggedOut), response.Message)
}

func (suite *HandlerTestSuite) TestLogout_ClearsSessionCookie() {
	suite.createTestUser("alice@example.com", "alice", "secret1")
	login := suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": "alice",
		"password":   "secret1",
	}, "")
	suite.Require().Equal(http.StatusOK, login.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	logout := suite.send(req, "")
	suite.Require().Equal(http.StatusOK, logout.Code)
	cookies := logout.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.send(req, "").Code)
}

func (suite *HandlerTestSuite) TestPasswordReset_TwoSteps() {
	suite.createTestUser("reset@example.com", "resetme", "oldpass")

	w := suite.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"identifier": "nobody"}, "")
	suite.Require().Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"identifier": "resetme"}, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/reset-password", map[string]string{
		"identifier":      "resetme",
		"password":        "newpass",
		"confirmPassword": "different",
	}, "")
	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/reset-password", map[string]string{
		"identifier":      "reset@example.com",
		"password":        "newpass",
		"confirmPassword": "newpass",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/login", map[string]string{"identifier": "resetme", "password": "oldpass"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	w = suite.do(http.MethodPost, "/api/auth/login", map[string]string{"identifier": "resetme", "password": "newpass"}, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}
