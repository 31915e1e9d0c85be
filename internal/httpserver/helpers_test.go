package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkrasnov/contactbook/internal/cache"
	"github.com/mkrasnov/contactbook/internal/hash"
	authmw "github.com/mkrasnov/contactbook/internal/middleware/auth"
	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/repo"
	"github.com/mkrasnov/contactbook/internal/search"
	"github.com/mkrasnov/contactbook/internal/service"
	"github.com/mkrasnov/contactbook/internal/tokens"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*cache.Snapshot
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*cache.Snapshot{}}
}

func (m *memoryCache) Get(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.entries[username]; ok {
		return snap.User(), nil
	}
	return nil, nil
}

func (m *memoryCache) Set(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[u.Username] = cache.SnapshotOf(u)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, username)
	m.deletes = append(m.deletes, username)
	return nil
}

func (m *memoryCache) snapshot(username string) *cache.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[username]
}

func (m *memoryCache) deleted(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range m.deletes {
		if name == username {
			return true
		}
	}
	return false
}

type fakeAvatarStore struct {
	uploads int
	fail    bool
}

func (f *fakeAvatarStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.fail {
		return "", fmt.Errorf("image host is down")
	}
	f.uploads++
	return "https://img.test/" + key, nil
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Cache    *memoryCache
	Store    *fakeAvatarStore
	Tokens   *tokens.Manager
	AuthSvc  *service.AuthService
	Auth     *AuthHandler
	Contacts *ContactHandler
	Users    *UserHandler
	Utils    *UtilsHandler
	MW       *authmw.Middleware
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	userCache := newMemoryCache()
	store := &fakeAvatarStore{}

	manager := &tokens.Manager{
		Secret:     []byte("test_secret"),
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	userRepo := &repo.UserRepo{DB: db}
	contactRepo := &repo.ContactRepo{DB: db}

	authSvc := &service.AuthService{Users: userRepo, Cache: userCache, Tokens: manager}
	userSvc := &service.UserService{Users: userRepo, Cache: userCache, Avatars: store}
	contactSvc := &service.ContactService{Contacts: contactRepo, Search: &search.Contacts{}}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Cache:    userCache,
		Store:    store,
		Tokens:   manager,
		AuthSvc:  authSvc,
		Auth:     &AuthHandler{Svc: authSvc},
		Contacts: &ContactHandler{Svc: contactSvc},
		Users:    &UserHandler{Svc: userSvc},
		Utils:    &UtilsHandler{DB: db, Version: "test"},
		MW:       &authmw.Middleware{Auth: authSvc},
	}
}

func (env *testEnv) doJSON(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doForm(path string, form url.Values) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// createUser inserts a user row directly, bypassing the register endpoint.
func (env *testEnv) createUser(username, email, password, role string) *models.User {
	hashed, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

// login runs the login handler and returns the token pair.
func (env *testEnv) login(username, password string) *service.TokenPair {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	rec, c := env.doForm("/api/auth/login", form)
	require.NoError(env.T, env.Auth.Login(c))
	require.Equal(env.T, http.StatusOK, rec.Code)

	var pair service.TokenPair
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(env.T, pair.AccessToken)
	require.NotEmpty(env.T, pair.RefreshToken)
	return &pair
}

// call invokes a handler behind RequireLogin, the way the router does.
func (env *testEnv) call(h echo.HandlerFunc, c echo.Context) error {
	return env.MW.RequireLogin(h)(c)
}

// callAdmin invokes a handler behind RequireLogin and AdminOnly.
func (env *testEnv) callAdmin(h echo.HandlerFunc, c echo.Context) error {
	return env.MW.RequireLogin(env.MW.AdminOnly(h))(c)
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
