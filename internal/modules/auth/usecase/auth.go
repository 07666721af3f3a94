package usecase

import (
	"context"

	"watchless/internal/modules/auth/domain"
	authdto "watchless/internal/modules/auth/dto"
	authin "watchless/internal/modules/auth/port/in"
	"watchless/internal/modules/auth/service"
)

type Interactor struct {
	svc *service.AuthService
}

func NewInteractor(svc *service.AuthService) authin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Login(ctx context.Context, input authdto.LoginInput) (authdto.LoginOutput, error) {
	user, token, err := i.svc.Login(ctx, input.Credential)
	if err != nil {
		return authdto.LoginOutput{}, err
	}
	return authdto.LoginOutput{User: authdto.FromUser(user), Token: token}, nil
}

func (i *Interactor) Logout(ctx context.Context, token string) error {
	return i.svc.Logout(ctx, token)
}

func (i *Interactor) Authenticate(ctx context.Context, token string) (authdto.Principal, error) {
	claims, err := i.svc.Authenticate(ctx, token)
	if err != nil {
		return authdto.Principal{}, err
	}
	return authdto.Principal{UserID: claims.UserID, Email: claims.Email, TokenID: claims.TokenID, IssuedAt: claims.IssuedAt, ExpiresAt: claims.ExpiresAt}, nil
}

func (i *Interactor) Profile(ctx context.Context, principal authdto.Principal) (authdto.UserOutput, error) {
	user, err := i.svc.Profile(ctx, domain.Claims{
		UserID:    principal.UserID,
		Email:     principal.Email,
		TokenID:   principal.TokenID,
		IssuedAt:  principal.IssuedAt,
		ExpiresAt: principal.ExpiresAt,
	})
	if err != nil {
		return authdto.UserOutput{}, err
	}
	return authdto.FromUser(user), nil
}
