package out

import (
	"context"

	authdomain "watchless/internal/modules/auth/domain"
)

// Backend is the remote WatchLess API as seen from a client machine.
type Backend interface {
	Login(ctx context.Context, credential string) (authdomain.User, string, error)
	Logout(ctx context.Context, token string) error
}

// ProfileStore holds the signed-in user, the bearer token and free-form
// settings on the local machine. Reads report absence instead of errors.
type ProfileStore interface {
	User(ctx context.Context) (authdomain.User, bool)
	SetUser(ctx context.Context, user authdomain.User)
	ClearUser(ctx context.Context)
	AuthToken(ctx context.Context) (string, bool)
	SetAuthToken(ctx context.Context, token string)
	ClearAuthToken(ctx context.Context)
	Settings(ctx context.Context) (map[string]any, bool)
	SetSettings(ctx context.Context, settings map[string]any)
	ClearSettings(ctx context.Context)
}
