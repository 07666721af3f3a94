package out

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "watchless/internal/platform/errors"
)

func newBackend(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var logouts []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Credential string `json:"credential"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Credential != "google-ok" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"Authentication failed"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Login successful","data":{"user":{"id":"google-7","email":"v@example.com","displayName":"V","createdAt":"2026-03-01T12:00:00Z","preferences":{"dailyGoal":90,"notifications":false,"autoExport":true}},"token":"jwt-abc"}}`))
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logouts = append(logouts, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"message":"Logout successful"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logouts
}

func TestAPIClientLogin(t *testing.T) {
	t.Parallel()
	srv, _ := newBackend(t)
	client := APIClient{BaseURL: srv.URL + "/"}

	user, token, err := client.Login(context.Background(), "google-ok")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
	assert.Equal(t, "google-7", user.ID)
	assert.Equal(t, 90, user.Preferences.DailyGoal)
	assert.False(t, user.Preferences.Notifications)
	assert.True(t, user.Preferences.AutoExport)
	assert.Equal(t, 2026, user.CreatedAt.Year())

	_, _, err = client.Login(context.Background(), "forged")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
	assert.Contains(t, err.Error(), "Authentication failed")
}

func TestAPIClientLogoutSendsBearer(t *testing.T) {
	t.Parallel()
	srv, logouts := newBackend(t)
	require.NoError(t, APIClient{BaseURL: srv.URL}.Logout(context.Background(), "jwt-abc"))
	assert.Equal(t, []string{"Bearer jwt-abc"}, *logouts)
}

func TestAPIClientRejectsBadBaseURL(t *testing.T) {
	t.Parallel()
	for _, base := range []string{"", "localhost:8080", "://nope"} {
		_, _, err := APIClient{BaseURL: base}.Login(context.Background(), "google-ok")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, base)
	}
}

func TestStatusErrorMapping(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, statusError(http.StatusUnauthorized, ""), apperrors.ErrMissingToken)
	assert.ErrorIs(t, statusError(http.StatusForbidden, "x"), apperrors.ErrInvalidToken)
	assert.EqualError(t, statusError(http.StatusBadGateway, ""), "backend returned 502: Bad Gateway")
}
