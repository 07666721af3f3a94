package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	timerdomain "watchless/internal/modules/timer/domain"
	viewingout "watchless/internal/modules/viewing/port/out"
	"watchless/internal/platform/clock"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/id"
	"watchless/internal/platform/logging"
)

type ViewingService struct {
	clock  clock.Clock
	ids    id.Generator
	repo   viewingout.SessionRepository
	logger *slog.Logger
}

func NewViewingService(clk clock.Clock, ids id.Generator, repo viewingout.SessionRepository) *ViewingService {
	return &ViewingService{clock: clk, ids: ids, repo: repo, logger: logging.For("viewing", "service")}
}

// Start opens a session for userID. When one is already running it is
// returned unchanged with started=false.
func (s *ViewingService) Start(ctx context.Context, userID string) (timerdomain.ViewingSession, bool, error) {
	if userID == "" {
		return timerdomain.ViewingSession{}, false, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	active, err := s.repo.FindActive(ctx, userID)
	if err == nil {
		return active, false, nil
	}
	if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return timerdomain.ViewingSession{}, false, err
	}
	session := timerdomain.NewViewingSession(s.ids.New(), userID, s.clock.Now())
	if err := s.repo.Create(ctx, session); err != nil {
		if errors.Is(err, apperrors.ErrActiveSessionExists) {
			active, findErr := s.repo.FindActive(ctx, userID)
			if findErr != nil {
				return timerdomain.ViewingSession{}, false, findErr
			}
			return active, false, nil
		}
		return timerdomain.ViewingSession{}, false, err
	}
	s.logger.InfoContext(ctx, "session started", "operation", "start", "user_id", userID, "session_id", session.ID)
	return session, true, nil
}

// Stop finishes a running session. A session that already ended is returned
// as stored.
func (s *ViewingService) Stop(ctx context.Context, userID, sessionID, showName string) (timerdomain.ViewingSession, error) {
	session, err := s.repo.FindByID(ctx, userID, sessionID)
	if err != nil {
		return timerdomain.ViewingSession{}, err
	}
	if !session.IsActive {
		return session, nil
	}
	finished := session.Finish(s.clock.Now())
	if name := strings.TrimSpace(showName); name != "" {
		finished = finished.WithShowName(name)
	}
	if err := s.repo.Update(ctx, finished); err != nil {
		return timerdomain.ViewingSession{}, err
	}
	s.logger.InfoContext(ctx, "session stopped", "operation", "stop", "user_id", userID, "session_id", sessionID, "duration_minutes", finished.Duration)
	return finished, nil
}

func (s *ViewingService) Active(ctx context.Context, userID string) (timerdomain.ViewingSession, bool, error) {
	session, err := s.repo.FindActive(ctx, userID)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return timerdomain.ViewingSession{}, false, nil
	}
	if err != nil {
		return timerdomain.ViewingSession{}, false, err
	}
	return session, true, nil
}

func (s *ViewingService) Rename(ctx context.Context, userID, sessionID, showName string) (timerdomain.ViewingSession, error) {
	session, err := s.repo.FindByID(ctx, userID, sessionID)
	if err != nil {
		return timerdomain.ViewingSession{}, err
	}
	renamed := session.WithShowName(strings.TrimSpace(showName))
	if err := s.repo.Update(ctx, renamed); err != nil {
		return timerdomain.ViewingSession{}, err
	}
	return renamed, nil
}
