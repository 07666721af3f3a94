package service

import (
	"context"
	"fmt"
	"log/slog"

	"watchless/internal/modules/analytics/domain"
	analyticsout "watchless/internal/modules/analytics/port/out"
	timerdomain "watchless/internal/modules/timer/domain"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/logging"
)

type AnalyticsService struct {
	sessions analyticsout.SessionLister
	logger   *slog.Logger
}

func NewAnalyticsService(sessions analyticsout.SessionLister) *AnalyticsService {
	return &AnalyticsService{sessions: sessions, logger: logging.For("analytics", "service")}
}

func (s *AnalyticsService) Daily(ctx context.Context, userID, date string) (domain.DailyReport, error) {
	period, err := domain.ParseDay(date)
	if err != nil {
		return domain.DailyReport{}, err
	}
	sessions, err := s.load(ctx, "daily", userID, period)
	if err != nil {
		return domain.DailyReport{}, err
	}
	return domain.Daily(userID, period, sessions), nil
}

func (s *AnalyticsService) Weekly(ctx context.Context, userID, week string) (domain.WeeklyReport, error) {
	period, err := domain.ParseWeek(week)
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	sessions, err := s.load(ctx, "weekly", userID, period)
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	return domain.Weekly(userID, period, sessions), nil
}

func (s *AnalyticsService) Monthly(ctx context.Context, userID, month string) (domain.MonthlyReport, error) {
	period, err := domain.ParseMonth(month)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	sessions, err := s.load(ctx, "monthly", userID, period)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	return domain.Monthly(userID, period, sessions), nil
}

func (s *AnalyticsService) load(ctx context.Context, operation, userID string, period domain.Period) ([]timerdomain.ViewingSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	sessions, err := s.sessions.ListFinished(ctx, userID, period.From, period.To)
	if err != nil {
		s.logger.ErrorContext(ctx, "list sessions failed", "operation", operation, "user_id", userID, "period", period.Label, "error", err.Error())
		return nil, fmt.Errorf("list sessions for %s: %w", period.Label, err)
	}
	s.logger.DebugContext(ctx, "report computed", "operation", operation, "user_id", userID, "period", period.Label, "sessions", len(sessions))
	return sessions, nil
}
