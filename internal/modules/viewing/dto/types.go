package dto

import (
	"time"

	timerdomain "watchless/internal/modules/timer/domain"
)

type SessionOutput struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  int        `json:"duration"`
	ShowName  string     `json:"showName,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
}

type StartOutput struct {
	Session       SessionOutput
	AlreadyActive bool
}

type StopInput struct {
	UserID    string
	SessionID string
	ShowName  string
}

type UpdateInput struct {
	UserID    string
	SessionID string
	ShowName  string
}

func FromSession(s timerdomain.ViewingSession) SessionOutput {
	return SessionOutput{
		ID:        s.ID,
		UserID:    s.UserID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.Duration,
		ShowName:  s.ShowName,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}
