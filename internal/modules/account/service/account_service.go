package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	accountout "watchless/internal/modules/account/port/out"
	authdomain "watchless/internal/modules/auth/domain"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/logging"
)

type AccountService struct {
	backend accountout.Backend
	store   accountout.ProfileStore
	logger  *slog.Logger
}

func NewAccountService(backend accountout.Backend, store accountout.ProfileStore) *AccountService {
	return &AccountService{backend: backend, store: store, logger: logging.For("account", "service")}
}

// Login exchanges a Google ID token for a session with the backend and keeps
// the user and bearer token locally.
func (s *AccountService) Login(ctx context.Context, credential string) (authdomain.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return authdomain.User{}, fmt.Errorf("%w: google credential is required", apperrors.ErrInvalidInput)
	}
	user, token, err := s.backend.Login(ctx, credential)
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", "operation", "login", "outcome", "failure", "error", err.Error())
		return authdomain.User{}, err
	}
	s.store.SetUser(ctx, user)
	s.store.SetAuthToken(ctx, token)
	s.logger.InfoContext(ctx, "logged in", "operation", "login", "outcome", "success", "user_id", user.ID)
	return user, nil
}

// Logout forgets the local session. The backend is told to revoke the token
// when one is stored; a failure there does not keep the user signed in.
func (s *AccountService) Logout(ctx context.Context) error {
	token, ok := s.store.AuthToken(ctx)
	var remoteErr error
	if ok && token != "" {
		remoteErr = s.backend.Logout(ctx, token)
		if remoteErr != nil {
			s.logger.WarnContext(ctx, "remote logout failed", "operation", "logout", "outcome", "failure", "error", remoteErr.Error())
		}
	}
	s.store.ClearUser(ctx)
	s.store.ClearAuthToken(ctx)
	s.logger.InfoContext(ctx, "logged out", "operation", "logout", "outcome", "success")
	if remoteErr != nil {
		return fmt.Errorf("local session cleared, backend logout failed: %w", remoteErr)
	}
	return nil
}

func (s *AccountService) Whoami(ctx context.Context) (authdomain.User, error) {
	user, ok := s.store.User(ctx)
	if !ok {
		return authdomain.User{}, apperrors.ErrNotLoggedIn
	}
	return user, nil
}

func (s *AccountService) Setting(ctx context.Context, key string) (any, bool) {
	settings, _ := s.store.Settings(ctx)
	value, ok := settings[key]
	return value, ok
}

func (s *AccountService) Settings(ctx context.Context) map[string]any {
	settings, ok := s.store.Settings(ctx)
	if !ok || settings == nil {
		return map[string]any{}
	}
	return settings
}

// SetSetting stores raw under key, decoded as JSON when it parses.
func (s *AccountService) SetSetting(ctx context.Context, key, raw string) (any, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: setting key is required", apperrors.ErrInvalidInput)
	}
	value := ParseSettingValue(raw)
	settings := s.Settings(ctx)
	settings[key] = value
	s.store.SetSettings(ctx, settings)
	return value, nil
}

func (s *AccountService) ClearSettings(ctx context.Context) {
	s.store.ClearSettings(ctx)
}

func ParseSettingValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
