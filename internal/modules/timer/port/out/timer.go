package out

import (
	"context"
	"time"

	authdomain "watchless/internal/modules/auth/domain"
	"watchless/internal/modules/timer/domain"
)

// SnapshotStore mirrors the timer snapshot. Failures are absorbed by the
// implementation: a snapshot that cannot be read is reported as absent.
type SnapshotStore interface {
	TimerState(ctx context.Context) (domain.TimerState, bool)
	SetTimerState(ctx context.Context, state domain.TimerState)
	ClearTimerState(ctx context.Context)
}

type Journal interface {
	Save(ctx context.Context, session domain.ViewingSession, outcome domain.NameOutcome) (string, error)
	List(ctx context.Context, from, to time.Time) ([]domain.ViewingSession, error)
}

type ProfileReader interface {
	User(ctx context.Context) (authdomain.User, bool)
}
