package in_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	viewinghttp "watchless/internal/modules/viewing/adapter/in"
	viewingout "watchless/internal/modules/viewing/adapter/out"
	"watchless/internal/modules/viewing/service"
	"watchless/internal/modules/viewing/usecase"
	"watchless/internal/platform/database"
	"watchless/internal/platform/httpx"
	"watchless/internal/platform/id"
)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// asUser stands in for the auth middleware.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get("X-Test-User")
		if user == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(httpx.WithCaller(r.Context(), httpx.Caller{UserID: user})))
	})
}

func newRouter(t *testing.T) (http.Handler, *steppingClock) {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := viewingout.NewSQLiteSessionRepository(ctx, db)
	require.NoError(t, err)
	clk := &steppingClock{now: time.Date(2026, 4, 6, 20, 0, 0, 0, time.UTC)}
	svc := service.NewViewingService(clk, id.SessionID{Now: clk.Now}, repo)

	r := chi.NewRouter()
	r.Use(httpx.Recover, asUser)
	r.Route("/api/sessions", viewinghttp.NewHTTPHandler(usecase.NewInteractor(svc)).Routes)
	return r, clk
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type sessionBody struct {
	ID       string     `json:"id"`
	UserID   string     `json:"userId"`
	EndTime  *time.Time `json:"endTime"`
	Duration int        `json:"duration"`
	ShowName string     `json:"showName"`
	IsActive bool       `json:"isActive"`
}

func call(t *testing.T, h http.Handler, method, path, user string, body any) (int, envelope) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeSession(t *testing.T, raw json.RawMessage) sessionBody {
	t.Helper()
	var s sessionBody
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestSessionRoutesFlow(t *testing.T) {
	t.Parallel()
	router, clk := newRouter(t)

	code, env := call(t, router, http.MethodGet, "/api/sessions/active", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, "No active session", env.Message)

	code, env = call(t, router, http.MethodPost, "/api/sessions/start", "u1", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Session started successfully", env.Message)
	started := decodeSession(t, env.Data)
	assert.Regexp(t, `^session_\d+_[0-9a-z]{9}$`, started.ID)
	assert.True(t, started.IsActive)
	assert.Nil(t, started.EndTime)
	assert.Equal(t, "u1", started.UserID)

	code, env = call(t, router, http.MethodPost, "/api/sessions/start", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Session already active", env.Message)
	assert.Equal(t, started.ID, decodeSession(t, env.Data).ID)

	code, env = call(t, router, http.MethodGet, "/api/sessions/active", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, started.ID, decodeSession(t, env.Data).ID)

	clk.advance(61 * time.Second)
	code, env = call(t, router, http.MethodPut, "/api/sessions/"+started.ID+"/stop", "u1", map[string]string{"showName": "Shogun"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Session stopped successfully", env.Message)
	stopped := decodeSession(t, env.Data)
	assert.Equal(t, 1, stopped.Duration)
	assert.False(t, stopped.IsActive)
	assert.NotNil(t, stopped.EndTime)
	assert.Equal(t, "Shogun", stopped.ShowName)

	code, env = call(t, router, http.MethodPut, "/api/sessions/"+started.ID+"/update", "u1", map[string]string{"showName": "Shōgun"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Session updated successfully", env.Message)
	assert.Equal(t, "Shōgun", decodeSession(t, env.Data).ShowName)
}

func TestSessionRoutesErrors(t *testing.T) {
	t.Parallel()
	router, _ := newRouter(t)

	code, env := call(t, router, http.MethodPost, "/api/sessions/start", "owner", nil)
	require.Equal(t, http.StatusCreated, code)
	owned := decodeSession(t, env.Data)

	code, env = call(t, router, http.MethodPut, "/api/sessions/"+owned.ID+"/stop", "intruder", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, httpx.MsgNotFound, env.Error)

	code, _ = call(t, router, http.MethodPut, "/api/sessions/nope/update", "owner", map[string]string{"showName": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+owned.ID+"/stop", bytes.NewBufferString("{not json"))
	req.Header.Set("X-Test-User", "owner")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	code, env = call(t, router, http.MethodGet, "/api/sessions/active", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, httpx.MsgAccessTokenRequired, env.Error)
}
