package out

import (
	"context"
	"time"

	"watchless/internal/modules/auth/domain"
)

// IdentityVerifier checks a third-party ID token and returns who it names.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (domain.Identity, error)
}

// UserStore persists profiles. FindByID returns apperrors.ErrNotFound for an
// unknown user.
type UserStore interface {
	Upsert(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

type TokenIssuer interface {
	Issue(user domain.User, now time.Time) (string, domain.Claims, error)
	Verify(token string, now time.Time) (domain.Claims, error)
}

// RevocationStore remembers logged-out token IDs until they expire anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
