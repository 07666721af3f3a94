package in_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhttp "watchless/internal/modules/auth/adapter/in"
	authout "watchless/internal/modules/auth/adapter/out"
	"watchless/internal/modules/auth/domain"
	"watchless/internal/modules/auth/service"
	"watchless/internal/modules/auth/usecase"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/httpx"
	"watchless/internal/platform/id"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, credential string) (domain.Identity, error) {
	if credential != "good-google-token" {
		return domain.Identity{}, apperrors.ErrInvalidCredential
	}
	return domain.Identity{Subject: "google-42", Email: "viewer@example.com", Name: "Viewer"}, nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memoryUsers) Upsert(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[user.ID]; ok {
		existing.Email = user.Email
		existing.DisplayName = user.DisplayName
		m.users[user.ID] = existing
		return existing, nil
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, apperrors.ErrNotFound
	}
	return user, nil
}

type nowClock struct{}

func (nowClock) Now() time.Time { return time.Now().UTC() }

const secret = "test-secret"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	issuer, err := authout.NewHS256Issuer(secret, 24*time.Hour, id.RandomHex{})
	require.NoError(t, err)
	svc := service.NewAuthService(nowClock{}, fakeVerifier{}, &memoryUsers{users: map[string]domain.User{}}, issuer, authout.NewMemoryRevocationStore(nowClock{}))
	handler := authhttp.NewHTTPHandler(usecase.NewInteractor(svc))

	r := chi.NewRouter()
	r.Use(httpx.RequestID, httpx.Recover)
	r.Route("/api/auth", handler.Routes)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestLoginProfileLogoutFlow(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	code, env := call(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{"credential": "good-google-token"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "Login successful", env.Message)
	var login struct {
		User struct {
			ID          string `json:"id"`
			Preferences struct {
				DailyGoal     int  `json:"dailyGoal"`
				Notifications bool `json:"notifications"`
				AutoExport    bool `json:"autoExport"`
			} `json:"preferences"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "google-42", login.User.ID)
	assert.Equal(t, 120, login.User.Preferences.DailyGoal)
	assert.True(t, login.User.Preferences.Notifications)
	assert.False(t, login.User.Preferences.AutoExport)
	require.NotEmpty(t, login.Token)

	code, env = call(t, router, http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"email":"viewer@example.com"`)

	code, env = call(t, router, http.MethodPost, "/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logout successful", env.Message)

	code, env = call(t, router, http.MethodGet, "/api/auth/profile", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid or expired token", env.Error)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	code, env := call(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Google credential is required", env.Error)

	code, env = call(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{"credential": "forged"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Authentication failed", env.Error)
	assert.False(t, env.Success)
}

func TestProfileRequiresToken(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	code, env := call(t, router, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", env.Error)

	code, env = call(t, router, http.MethodGet, "/api/auth/profile", "abc.def.ghi", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid or expired token", env.Error)
}

func TestLogoutWithoutTokenStillSucceeds(t *testing.T) {
	t.Parallel()
	router := newRouter(t)
	code, env := call(t, router, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.False(t, strings.Contains(string(env.Data), "token"))
}
