package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

// ViewingSession is one continuous interval of recorded viewing time.
// While IsActive, EndTime is nil and Duration is 0. Once finished, EndTime
// is set and Duration holds whole minutes.
type ViewingSession struct {
	ID        string
	UserID    string
	StartTime time.Time
	EndTime   *time.Time
	Duration  int
	ShowName  string
	IsActive  bool
	CreatedAt time.Time
}

func NewViewingSession(id, userID string, now time.Time) ViewingSession {
	return ViewingSession{
		ID:        id,
		UserID:    userID,
		StartTime: now,
		IsActive:  true,
		CreatedAt: now,
	}
}

// Finish returns the terminal form of s stopped at end.
func (s ViewingSession) Finish(end time.Time) ViewingSession {
	finished := s
	finished.EndTime = &end
	finished.Duration = DurationMinutes(end.Sub(s.StartTime))
	finished.IsActive = false
	return finished
}

// WithShowName attaches a show name to a finished session.
func (s ViewingSession) WithShowName(name string) ViewingSession {
	named := s
	named.ShowName = name
	return named
}

func (s ViewingSession) Clone() ViewingSession {
	c := s
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return c
}

// DurationMinutes floors elapsed to whole minutes, never negative.
func DurationMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

// FormatClock renders elapsed as H:MM:SS when at least an hour, else M:SS.
func FormatClock(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	total := int64(elapsed / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
