package service

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "watchless/internal/modules/auth/domain"
	apperrors "watchless/internal/platform/errors"
)

type fakeBackend struct {
	logoutErr error
	logouts   []string
}

func (b *fakeBackend) Login(_ context.Context, credential string) (authdomain.User, string, error) {
	if credential != "google-ok" {
		return authdomain.User{}, "", apperrors.ErrInvalidCredential
	}
	user := authdomain.NewUser(authdomain.Identity{Subject: "google-7", Email: "v@example.com"}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	return user, "jwt-abc", nil
}

func (b *fakeBackend) Logout(_ context.Context, token string) error {
	b.logouts = append(b.logouts, token)
	return b.logoutErr
}

type memoryProfile struct {
	user     *authdomain.User
	token    string
	settings map[string]any

	// nullSettings reports a present slot that decoded to a nil map.
	nullSettings bool
}

func (m *memoryProfile) User(context.Context) (authdomain.User, bool) {
	if m.user == nil {
		return authdomain.User{}, false
	}
	return *m.user, true
}
func (m *memoryProfile) SetUser(_ context.Context, u authdomain.User) { m.user = &u }
func (m *memoryProfile) ClearUser(context.Context)                    { m.user = nil }
func (m *memoryProfile) AuthToken(context.Context) (string, bool)     { return m.token, m.token != "" }
func (m *memoryProfile) SetAuthToken(_ context.Context, t string)     { m.token = t }
func (m *memoryProfile) ClearAuthToken(context.Context)               { m.token = "" }
func (m *memoryProfile) Settings(context.Context) (map[string]any, bool) {
	if m.nullSettings {
		return nil, true
	}
	if m.settings == nil {
		return nil, false
	}
	copied := map[string]any{}
	for k, v := range m.settings {
		copied[k] = v
	}
	return copied, true
}
func (m *memoryProfile) SetSettings(_ context.Context, s map[string]any) { m.settings = s }
func (m *memoryProfile) ClearSettings(context.Context)                   { m.settings = nil }

func TestLoginStoresUserAndToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryProfile{}
	svc := NewAccountService(&fakeBackend{}, store)

	if _, err := svc.Whoami(ctx); !errors.Is(err, apperrors.ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}
	user, err := svc.Login(ctx, "  google-ok ")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "google-7" || store.token != "jwt-abc" {
		t.Fatalf("unexpected login state: user=%+v token=%q", user, store.token)
	}
	me, err := svc.Whoami(ctx)
	if err != nil || me.Email != "v@example.com" || me.Preferences.DailyGoal != authdomain.DefaultDailyGoalMinutes {
		t.Fatalf("unexpected whoami: %+v err=%v", me, err)
	}
}

func TestLoginFailureKeepsStoreEmpty(t *testing.T) {
	t.Parallel()
	store := &memoryProfile{}
	svc := NewAccountService(&fakeBackend{}, store)
	if _, err := svc.Login(context.Background(), "bad"); !errors.Is(err, apperrors.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
	if _, err := svc.Login(context.Background(), " "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if store.user != nil || store.token != "" {
		t.Fatalf("store must stay empty: %+v", store)
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := &fakeBackend{logoutErr: errors.New("connection refused")}
	store := &memoryProfile{}
	svc := NewAccountService(backend, store)
	if _, err := svc.Login(ctx, "google-ok"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx); err == nil {
		t.Fatalf("expected backend failure to surface")
	}
	if store.user != nil || store.token != "" {
		t.Fatalf("local session must be cleared: %+v", store)
	}
	if len(backend.logouts) != 1 || backend.logouts[0] != "jwt-abc" {
		t.Fatalf("unexpected backend calls: %v", backend.logouts)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout without token should be a no-op, got %v", err)
	}
	if len(backend.logouts) != 1 {
		t.Fatalf("backend must not be called without a token")
	}
}

func TestSettingsParseJSONOrKeepString(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryProfile{}
	svc := NewAccountService(&fakeBackend{}, store)

	cases := map[string]any{
		"dailyGoal": float64(90),
		"dark":      true,
		"label":     "evening",
		"tags":      []any{"a", "b"},
	}
	raws := map[string]string{"dailyGoal": "90", "dark": "true", "label": "evening", "tags": `["a","b"]`}
	for key, raw := range raws {
		if _, err := svc.SetSetting(ctx, key, raw); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	for key, want := range cases {
		got, ok := svc.Setting(ctx, key)
		if !ok {
			t.Fatalf("missing %s", key)
		}
		if gotSlice, isSlice := got.([]any); isSlice {
			if len(gotSlice) != 2 || gotSlice[0] != "a" {
				t.Fatalf("%s = %v", key, got)
			}
			continue
		}
		if got != want {
			t.Fatalf("%s = %#v, want %#v", key, got, want)
		}
	}

	if _, err := svc.SetSetting(ctx, " ", "1"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty key, got %v", err)
	}
	svc.ClearSettings(ctx)
	if len(svc.Settings(ctx)) != 0 {
		t.Fatalf("settings should be empty after clear")
	}
}

func TestNullSettingsSlotIsTreatedAsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryProfile{nullSettings: true}
	svc := NewAccountService(&fakeBackend{}, store)

	if got := svc.Settings(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected an empty settings map, got %#v", got)
	}
	if _, ok := svc.Setting(ctx, "theme"); ok {
		t.Fatalf("null slot must not report settings")
	}
	value, err := svc.SetSetting(ctx, "theme", "dark")
	if err != nil {
		t.Fatalf("set on null slot: %v", err)
	}
	if value != "dark" || store.settings["theme"] != "dark" {
		t.Fatalf("setting not stored: value=%#v stored=%#v", value, store.settings)
	}
}
