package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/dto"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/models"
)

type avatarPart struct {
	filename string
	mimeType string
	content  []byte
}

// profileRequest builds the multipart form sent by the profile page.
func (suite *HandlerTestSuite) profileRequest(fields map[string]string, file *avatarPart) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		suite.Require().NoError(mw.WriteField(name, value))
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatarFile"; filename="%s"`, file.filename))
		header.Set("Content-Type", file.mimeType)
		part, err := mw.CreatePart(header)
		suite.Require().NoError(err)
		_, err = part.Write(file.content)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (suite *HandlerTestSuite) TestGetProfile() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")

	w := suite.do(http.MethodGet, "/api/profile", nil, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "alice", response.User.Username)
	assert.Nil(suite.T(), response.User.AvatarURL)
}

func (suite *HandlerTestSuite) TestUpdateProfile_DisplayNameAndURL() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")

	req := suite.profileRequest(map[string]string{
		"displayName": "  Alice A.  ",
		"avatarUrl":   "https://cdn.example.com/a.png",
	}, nil)
	w := suite.send(req, suite.tokenFor(user))
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.ProfileResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Alice A.", response.DisplayName)
	suite.Require().NotNil(response.AvatarURL)
	assert.Equal(suite.T(), "https://cdn.example.com/a.png", *response.AvatarURL)

	// The refreshed token carries the new display name.
	token := w.Header().Get("X-Session-Token")
	suite.Require().NotEmpty(token)
	claims, err := suite.sessions.Parse(token)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Alice A.", claims.DisplayName)

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, user.ID).Error)
	assert.Equal(suite.T(), "Alice A.", stored.DisplayName)
}

func (suite *HandlerTestSuite) TestUpdateProfile_UploadReplacesManagedAvatar() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")
	token := suite.tokenFor(user)

	first := suite.send(suite.profileRequest(nil, &avatarPart{"me.png", "image/png", []byte("first")}), token)
	suite.Require().Equal(http.StatusOK, first.Code)
	var firstResp dto.ProfileResponse
	suite.Require().NoError(json.Unmarshal(first.Body.Bytes(), &firstResp))
	suite.Require().NotNil(firstResp.AvatarURL)
	assert.True(suite.T(), strings.HasPrefix(*firstResp.AvatarURL, constants.AvatarURLPrefix))
	assert.True(suite.T(), strings.HasSuffix(*firstResp.AvatarURL, ".png"))

	firstPath := filepath.Join(suite.avatars.Dir(), filepath.Base(*firstResp.AvatarURL))
	content, err := os.ReadFile(firstPath)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []byte("first"), content)

	// The clock is fixed, so move the current avatar to a distinct name.
	suite.Require().NoError(suite.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("avatar_url", constants.AvatarURLPrefix+"old.png").Error)
	suite.Require().NoError(os.Rename(firstPath, filepath.Join(suite.avatars.Dir(), "old.png")))

	second := suite.send(suite.profileRequest(nil, &avatarPart{"me.webp", "image/webp", []byte("second")}), token)
	suite.Require().Equal(http.StatusOK, second.Code)

	_, err = os.Stat(filepath.Join(suite.avatars.Dir(), "old.png"))
	assert.True(suite.T(), os.IsNotExist(err))
}

func (suite *HandlerTestSuite) TestUpdateProfile_FileTooLarge() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")

	large := bytes.Repeat([]byte{0xff}, 3*1024*1024)
	req := suite.profileRequest(map[string]string{"displayName": "Renamed"}, &avatarPart{"big.jpg", "image/jpeg", large})
	w := suite.send(req, suite.tokenFor(user))

	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	ok, fields, _ := suite.formResult(w)
	assert.False(suite.T(), ok)
	assert.Equal(suite.T(), []string{suite.catalog.T("en", i18n.KeyFileTooLarge)}, fields["avatarUrl"])

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, user.ID).Error)
	assert.Equal(suite.T(), "alice", stored.DisplayName)
	assert.Nil(suite.T(), stored.AvatarURL)

	entries, err := os.ReadDir(suite.avatars.Dir())
	suite.Require().NoError(err)
	assert.Empty(suite.T(), entries)
}

func (suite *HandlerTestSuite) TestUpdateProfile_InvalidInput() {
	user := suite.createTestUser("a@example.com", "alice", "secret1")

	req := suite.profileRequest(map[string]string{
		"displayName": strings.Repeat("x", constants.MaxDisplayNameLength+1),
	}, &avatarPart{"notes.txt", "text/plain", []byte("hello")})
	w := suite.send(req, suite.tokenFor(user))

	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	_, fields, _ := suite.formResult(w)
	assert.Equal(suite.T(), []string{suite.catalog.T("en", i18n.KeyDisplayNameTooLong)}, fields["displayName"])
	assert.Equal(suite.T(), []string{suite.catalog.T("en", i18n.KeyInvalidFileType)}, fields["avatarUrl"])

	req = suite.profileRequest(map[string]string{"avatarUrl": "not a url"}, nil)
	w = suite.send(req, suite.tokenFor(user))
	suite.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	_, fields, _ = suite.formResult(w)
	assert.Equal(suite.T(), []string{suite.catalog.T("en", i18n.KeyInvalidURL)}, fields["avatarUrl"])
}
