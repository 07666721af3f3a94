package domain

import "time"

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// TimerState is the persisted snapshot of the timer. It is rebuildable:
// while running, TotalDuration is recomputed from StartTime on load.
type TimerState struct {
	Running        bool
	StartTime      *time.Time
	CurrentSession *ViewingSession
	TotalDuration  time.Duration
}

func (t TimerState) State() State {
	if t.Running {
		return StateRunning
	}
	return StateIdle
}

// Resumable reports whether a running snapshot carries everything needed to
// continue the session.
func (t TimerState) Resumable() bool {
	return t.Running && t.StartTime != nil && t.CurrentSession != nil
}

func (t TimerState) Clone() TimerState {
	c := t
	if t.StartTime != nil {
		start := *t.StartTime
		c.StartTime = &start
	}
	if t.CurrentSession != nil {
		session := t.CurrentSession.Clone()
		c.CurrentSession = &session
	}
	return c
}

// NameOutcome records how the show-name prompt was closed.
type NameOutcome string

const (
	NameSaved     NameOutcome = "saved"
	NameSkipped   NameOutcome = "skipped"
	NameDismissed NameOutcome = "dismissed"
)

func (o NameOutcome) Valid() bool {
	switch o {
	case NameSaved, NameSkipped, NameDismissed:
		return true
	}
	return false
}
