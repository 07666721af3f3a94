package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authdomain "watchless/internal/modules/auth/domain"
	"watchless/internal/modules/timer/domain"
	timerout "watchless/internal/modules/timer/port/out"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/kv"
	"watchless/internal/platform/logging"
)

const (
	KeyTimerState = "watchless_timer_state"
	KeyUserData   = "watchless_user_data"
	KeyAuthToken  = "watchless_auth_token"
	KeySettings   = "watchless_settings"

	availabilityKey = "watchless_availability"
)

var allKeys = []string{KeyTimerState, KeyUserData, KeyAuthToken, KeySettings}

// LocalStore keeps the timer snapshot, the signed-in profile, the bearer
// token and user settings as JSON values in a kv.Store. Nothing here returns
// an error: read failures are logged and reported as absent, write failures
// are logged and dropped.
type LocalStore struct {
	store  kv.Store
	logger *slog.Logger
}

var (
	_ timerout.SnapshotStore = (*LocalStore)(nil)
	_ timerout.ProfileReader = (*LocalStore)(nil)
)

func NewLocalStore(store kv.Store) *LocalStore {
	return &LocalStore{store: store, logger: logging.For("timer", "adapter")}
}

type sessionRecord struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime,omitempty"`
	Duration  int     `json:"duration"`
	ShowName  string  `json:"showName,omitempty"`
	IsActive  bool    `json:"isActive"`
	CreatedAt string  `json:"createdAt"`
}

type timerStateRecord struct {
	IsRunning      bool           `json:"isRunning"`
	StartTime      *string        `json:"startTime,omitempty"`
	CurrentSession *sessionRecord `json:"currentSession,omitempty"`
	TotalDuration  int64          `json:"totalDuration"`
}

type userRecord struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"displayName"`
	CreatedAt   string                 `json:"createdAt"`
	Preferences authdomain.Preferences `json:"preferences"`
}

func (s *LocalStore) TimerState(ctx context.Context) (domain.TimerState, bool) {
	record := timerStateRecord{}
	if !s.readJSON(ctx, KeyTimerState, &record) {
		return domain.TimerState{}, false
	}
	state, err := record.toDomain()
	if err != nil {
		s.logReadFailure(KeyTimerState, err)
		return domain.TimerState{}, false
	}
	return state, true
}

func (s *LocalStore) SetTimerState(ctx context.Context, state domain.TimerState) {
	s.writeJSON(ctx, KeyTimerState, timerStateFromDomain(state))
}

func (s *LocalStore) ClearTimerState(ctx context.Context) {
	s.remove(ctx, KeyTimerState)
}

func (s *LocalStore) User(ctx context.Context) (authdomain.User, bool) {
	record := userRecord{}
	if !s.readJSON(ctx, KeyUserData, &record) {
		return authdomain.User{}, false
	}
	createdAt, err := parseTime(record.CreatedAt)
	if err != nil {
		s.logReadFailure(KeyUserData, err)
		return authdomain.User{}, false
	}
	return authdomain.User{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		CreatedAt:   createdAt,
		Preferences: record.Preferences,
	}, true
}

func (s *LocalStore) SetUser(ctx context.Context, user authdomain.User) {
	s.writeJSON(ctx, KeyUserData, userRecord{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   formatTime(user.CreatedAt),
		Preferences: user.Preferences,
	})
}

func (s *LocalStore) ClearUser(ctx context.Context) {
	s.remove(ctx, KeyUserData)
}

func (s *LocalStore) AuthToken(ctx context.Context) (string, bool) {
	token := ""
	if !s.readJSON(ctx, KeyAuthToken, &token) || token == "" {
		return "", false
	}
	return token, true
}

func (s *LocalStore) SetAuthToken(ctx context.Context, token string) {
	s.writeJSON(ctx, KeyAuthToken, token)
}

func (s *LocalStore) ClearAuthToken(ctx context.Context) {
	s.remove(ctx, KeyAuthToken)
}

func (s *LocalStore) Settings(ctx context.Context) (map[string]any, bool) {
	var settings map[string]any
	if !s.readJSON(ctx, KeySettings, &settings) {
		return nil, false
	}
	if settings == nil {
		s.logReadFailure(KeySettings, errors.New("decode: settings slot holds null"))
		return nil, false
	}
	return settings, true
}

func (s *LocalStore) SetSettings(ctx context.Context, settings map[string]any) {
	s.writeJSON(ctx, KeySettings, settings)
}

func (s *LocalStore) ClearSettings(ctx context.Context) {
	s.remove(ctx, KeySettings)
}

// ClearAll removes every slot owned by the application.
func (s *LocalStore) ClearAll(ctx context.Context) {
	for _, key := range allKeys {
		s.remove(ctx, key)
	}
}

// IsAvailable checks the store with a write and a delete.
func (s *LocalStore) IsAvailable(ctx context.Context) bool {
	if err := s.store.Set(ctx, availabilityKey, availabilityKey); err != nil {
		s.logger.Warn("local store unavailable", "operation", "availability_check", "error", err.Error())
		return false
	}
	if err := s.store.Delete(ctx, availabilityKey); err != nil {
		s.logger.Warn("local store unavailable", "operation", "availability_check", "error", err.Error())
		return false
	}
	return true
}

func (s *LocalStore) readJSON(ctx context.Context, key string, target any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrKeyNotFound) {
			s.logReadFailure(key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		s.logReadFailure(key, fmt.Errorf("decode: %w", err))
		return false
	}
	return true
}

func (s *LocalStore) writeJSON(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("encode local value", "operation", "write", "key", key, "error", err.Error())
		return
	}
	if err := s.store.Set(ctx, key, string(payload)); err != nil {
		s.logger.Error("write local value", "operation", "write", "key", key, "error", err.Error())
	}
}

func (s *LocalStore) remove(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("remove local value", "operation", "remove", "key", key, "error", err.Error())
	}
}

func (s *LocalStore) logReadFailure(key string, err error) {
	s.logger.Error("read local value", "operation", "read", "key", key, "error", err.Error())
}

func timerStateFromDomain(state domain.TimerState) timerStateRecord {
	record := timerStateRecord{
		IsRunning:     state.Running,
		TotalDuration: state.TotalDuration.Milliseconds(),
	}
	if state.StartTime != nil {
		start := formatTime(*state.StartTime)
		record.StartTime = &start
	}
	if state.CurrentSession != nil {
		session := sessionFromDomain(*state.CurrentSession)
		record.CurrentSession = &session
	}
	return record
}

func (r timerStateRecord) toDomain() (domain.TimerState, error) {
	state := domain.TimerState{
		Running:       r.IsRunning,
		TotalDuration: time.Duration(r.TotalDuration) * time.Millisecond,
	}
	if r.StartTime != nil {
		start, err := parseTime(*r.StartTime)
		if err != nil {
			return domain.TimerState{}, fmt.Errorf("start time: %w", err)
		}
		state.StartTime = &start
	}
	if r.CurrentSession != nil {
		session, err := r.CurrentSession.toDomain()
		if err != nil {
			return domain.TimerState{}, err
		}
		state.CurrentSession = &session
	}
	return state, nil
}

func sessionFromDomain(s domain.ViewingSession) sessionRecord {
	record := sessionRecord{
		ID:        s.ID,
		UserID:    s.UserID,
		StartTime: formatTime(s.StartTime),
		Duration:  s.Duration,
		ShowName:  s.ShowName,
		IsActive:  s.IsActive,
		CreatedAt: formatTime(s.CreatedAt),
	}
	if s.EndTime != nil {
		end := formatTime(*s.EndTime)
		record.EndTime = &end
	}
	return record
}

func (r sessionRecord) toDomain() (domain.ViewingSession, error) {
	start, err := parseTime(r.StartTime)
	if err != nil {
		return domain.ViewingSession{}, fmt.Errorf("session start: %w", err)
	}
	createdAt := start
	if r.CreatedAt != "" {
		if createdAt, err = parseTime(r.CreatedAt); err != nil {
			return domain.ViewingSession{}, fmt.Errorf("session created: %w", err)
		}
	}
	session := domain.ViewingSession{
		ID:        r.ID,
		UserID:    r.UserID,
		StartTime: start,
		Duration:  r.Duration,
		ShowName:  r.ShowName,
		IsActive:  r.IsActive,
		CreatedAt: createdAt,
	}
	if r.EndTime != nil {
		end, err := parseTime(*r.EndTime)
		if err != nil {
			return domain.ViewingSession{}, fmt.Errorf("session end: %w", err)
		}
		session.EndTime = &end
	}
	return session, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}
