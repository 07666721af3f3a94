package dto

import (
	"strings"
	"time"

	"watchless/internal/modules/timer/domain"
)

const (
	OutcomeSaved     = domain.NameSaved
	OutcomeSkipped   = domain.NameSkipped
	OutcomeDismissed = domain.NameDismissed
)

// OutcomeFor picks the prompt outcome for a non-interactive stop.
func OutcomeFor(showName string) domain.NameOutcome {
	if strings.TrimSpace(showName) != "" {
		return OutcomeSaved
	}
	return OutcomeSkipped
}

type SessionOutput struct {
	ID        string
	UserID    string
	StartTime time.Time
	EndTime   *time.Time
	Duration  int
	ShowName  string
	IsActive  bool
}

type StatusOutput struct {
	State   domain.State
	Elapsed time.Duration
	Clock   string
	Session *SessionOutput
}

type StartOutput struct {
	Started bool
	Session SessionOutput
}

type StopOutput struct {
	Stopped bool
	Session SessionOutput
}

type RecordInput struct {
	Session  SessionOutput
	ShowName string
	Outcome  domain.NameOutcome
}

type RecordOutput struct {
	Path    string
	Session SessionOutput
}

type SummaryInput struct {
	Location *time.Location
}

type SummaryOutput struct {
	TodayMin  int
	WeekMin   int
	DailyGoal int
	HasGoal   bool
}

func FromSession(s domain.ViewingSession) SessionOutput {
	return SessionOutput{
		ID:        s.ID,
		UserID:    s.UserID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.Duration,
		ShowName:  s.ShowName,
		IsActive:  s.IsActive,
	}
}

func (s SessionOutput) ToDomain() domain.ViewingSession {
	return domain.ViewingSession{
		ID:        s.ID,
		UserID:    s.UserID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.Duration,
		ShowName:  s.ShowName,
		IsActive:  s.IsActive,
		CreatedAt: s.StartTime,
	}
}
