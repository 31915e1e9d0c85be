package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/transport"
)

func (env *testEnv) doAvatarUpload(token, contentType string, data []byte) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(env.T, err)
	_, err = part.Write(data)
	require.NoError(env.T, err)
	require.NoError(env.T, writer.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("test_user", "test@example.com", "password", models.RoleUser)
	pair := env.login("test_user", "password")

	rec, c := env.doJSON(http.MethodGet, "/api/users/me", nil, pair.AccessToken)
	require.NoError(t, env.call(env.Users.Me, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "test_user", resp.Username)
	require.Equal(t, "test@example.com", resp.Email)

	// the response never carries credentials
	require.NotContains(t, rec.Body.String(), "hashed_password")
	require.NotContains(t, rec.Body.String(), "refresh_token")
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	target := env.createUser("some_user", "some@example.com", "password", models.RoleUser)
	env.createUser("test_user", "test@example.com", "password", models.RoleUser)
	pair := env.login("test_user", "password")

	rec, c := env.doJSON(http.MethodGet, "/api/users/1", nil, pair.AccessToken)
	setUserID(c, target.ID)
	require.NoError(t, env.call(env.Users.Get, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "some_user", resp.Username)

	_, c = env.doJSON(http.MethodGet, "/api/users/999", nil, pair.AccessToken)
	setUserID(c, 999)
	requireHTTPError(t, env.call(env.Users.Get, c), http.StatusNotFound)
}

func setUserID(c echo.Context, id uint) {
	c.SetPath("/api/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(id))
}

func TestAvatarUpload(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("admin_user", "admin@example.com", "password", models.RoleAdmin)
	pair := env.login("admin_user", "password")

	rec, c := env.doAvatarUpload(pair.AccessToken, "image/png", []byte("fake png bytes"))
	require.NoError(t, env.callAdmin(env.Users.UpdateAvatar, c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, env.Store.uploads)

	var resp transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Avatar)
	require.Contains(t, *resp.Avatar, "https://img.test/avatars/")

	// the persisted row carries the new URL
	var stored models.User
	require.NoError(t, env.DB.First(&stored, user.ID).Error)
	require.NotNil(t, stored.Avatar)
	require.Equal(t, *resp.Avatar, *stored.Avatar)

	// the cached snapshot was invalidated
	require.True(t, env.Cache.deleted("admin_user"))
}

func TestAvatarUploadRejectsBadType(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin_user", "admin@example.com", "password", models.RoleAdmin)
	pair := env.login("admin_user", "password")

	_, c := env.doAvatarUpload(pair.AccessToken, "text/html", []byte("<html>"))
	requireHTTPError(t, env.callAdmin(env.Users.UpdateAvatar, c), http.StatusBadRequest)
	require.Zero(t, env.Store.uploads)
}

func TestAvatarUploadUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin_user", "admin@example.com", "password", models.RoleAdmin)
	pair := env.login("admin_user", "password")

	env.Store.fail = true
	_, c := env.doAvatarUpload(pair.AccessToken, "image/jpeg", []byte("jpeg bytes"))
	requireHTTPError(t, env.callAdmin(env.Users.UpdateAvatar, c), http.StatusInternalServerError)
}

func TestAvatarUploadRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("test_user", "test@example.com", "password", models.RoleUser)
	pair := env.login("test_user", "password")

	_, c := env.doAvatarUpload(pair.AccessToken, "image/png", []byte("fake png bytes"))
	requireHTTPError(t, env.callAdmin(env.Users.UpdateAvatar, c), http.StatusForbidden)
	require.Zero(t, env.Store.uploads)
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin_user", "admin@example.com", "password", models.RoleAdmin)
	target := env.createUser("test_user", "test@example.com", "password", models.RoleUser)

	adminPair := env.login("admin_user", "password")
	env.login("test_user", "password") // populates the cache for test_user

	rec, c := env.doJSON(http.MethodPatch, "/api/users/2/role", map[string]string{"role": "admin"}, adminPair.AccessToken)
	setUserID(c, target.ID)
	require.NoError(t, env.callAdmin(env.Users.UpdateRole, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.RoleAdmin, resp.Role)

	// the stale snapshot is dropped so the next auth sees the new role
	require.True(t, env.Cache.deleted("test_user"))
	require.Nil(t, env.Cache.snapshot("test_user"))
}

func TestChangeRoleValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin_user", "admin@example.com", "password", models.RoleAdmin)
	target := env.createUser("test_user", "test@example.com", "password", models.RoleUser)
	pair := env.login("admin_user", "password")

	_, c := env.doJSON(http.MethodPatch, "/api/users/2/role", map[string]string{"role": "superuser"}, pair.AccessToken)
	setUserID(c, target.ID)
	requireHTTPError(t, env.callAdmin(env.Users.UpdateRole, c), http.StatusBadRequest)

	_, c = env.doJSON(http.MethodPatch, "/api/users/999/role", map[string]string{"role": "admin"}, pair.AccessToken)
	setUserID(c, 999)
	requireHTTPError(t, env.callAdmin(env.Users.UpdateRole, c), http.StatusNotFound)
}

func TestChangeRoleRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	target := env.createUser("other_user", "other@example.com", "password", models.RoleUser)
	env.createUser("test_user", "test@example.com", "password", models.RoleUser)
	pair := env.login("test_user", "password")

	_, c := env.doJSON(http.MethodPatch, "/api/users/1/role", map[string]string{"role": "admin"}, pair.AccessToken)
	setUserID(c, target.ID)
	requireHTTPError(t, env.callAdmin(env.Users.UpdateRole, c), http.StatusForbidden)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin_user", "admin@example.com", "password", models.RoleAdmin)
	env.createUser("user_one", "one@example.com", "password", models.RoleUser)
	env.createUser("user_two", "two@example.com", "password", models.RoleUser)
	pair := env.login("admin_user", "password")

	rec, c := env.doJSON(http.MethodGet, "/api/users?skip=1&limit=1", nil, pair.AccessToken)
	require.NoError(t, env.callAdmin(env.Users.List, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, "user_one", listed[0].Username)
}
