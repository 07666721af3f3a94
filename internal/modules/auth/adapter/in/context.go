package in

import (
	"context"
	"net/http"

	authdto "watchless/internal/modules/auth/dto"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, principal authdto.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func principalFrom(r *http.Request) (authdto.Principal, bool) {
	principal, ok := r.Context().Value(principalKey{}).(authdto.Principal)
	return principal, ok
}
