package in

import (
	"context"

	"watchless/internal/modules/auth/dto"
)

type Usecase interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.LoginOutput, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (dto.Principal, error)
	Profile(ctx context.Context, principal dto.Principal) (dto.UserOutput, error)
}
