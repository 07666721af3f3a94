package out

import (
	"context"
	"time"

	timerdomain "watchless/internal/modules/timer/domain"
)

// SessionRepository stores sessions per user. Lookups of another user's
// session behave as if it did not exist (apperrors.ErrNotFound); FindActive
// returns apperrors.ErrNoActiveSession when nothing is running.
type SessionRepository interface {
	Create(ctx context.Context, session timerdomain.ViewingSession) error
	Update(ctx context.Context, session timerdomain.ViewingSession) error
	FindByID(ctx context.Context, userID, id string) (timerdomain.ViewingSession, error)
	FindActive(ctx context.Context, userID string) (timerdomain.ViewingSession, error)
	ListFinished(ctx context.Context, userID string, from, to time.Time) ([]timerdomain.ViewingSession, error)
}
