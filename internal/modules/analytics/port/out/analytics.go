package out

import (
	"context"
	"time"

	timerdomain "watchless/internal/modules/timer/domain"
)

// SessionLister reads a user's finished sessions started within [from, to).
type SessionLister interface {
	ListFinished(ctx context.Context, userID string, from, to time.Time) ([]timerdomain.ViewingSession, error)
}
