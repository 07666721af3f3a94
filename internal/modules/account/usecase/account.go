package usecase

import (
	"context"

	accountdto "watchless/internal/modules/account/dto"
	accountin "watchless/internal/modules/account/port/in"
	"watchless/internal/modules/account/service"
)

type Interactor struct {
	svc *service.AccountService
}

func NewInteractor(svc *service.AccountService) accountin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Login(ctx context.Context, credential string) (accountdto.Profile, error) {
	user, err := i.svc.Login(ctx, credential)
	if err != nil {
		return accountdto.Profile{}, err
	}
	return accountdto.FromUser(user), nil
}

func (i *Interactor) Logout(ctx context.Context) error {
	return i.svc.Logout(ctx)
}

func (i *Interactor) Whoami(ctx context.Context) (accountdto.Profile, error) {
	user, err := i.svc.Whoami(ctx)
	if err != nil {
		return accountdto.Profile{}, err
	}
	return accountdto.FromUser(user), nil
}

func (i *Interactor) Setting(ctx context.Context, key string) (accountdto.SettingOutput, error) {
	value, ok := i.svc.Setting(ctx, key)
	return accountdto.SettingOutput{Key: key, Value: value, Found: ok}, nil
}

func (i *Interactor) Settings(ctx context.Context) (map[string]any, error) {
	return i.svc.Settings(ctx), nil
}

func (i *Interactor) SetSetting(ctx context.Context, input accountdto.SetSettingInput) (accountdto.SettingOutput, error) {
	value, err := i.svc.SetSetting(ctx, input.Key, input.Raw)
	if err != nil {
		return accountdto.SettingOutput{}, err
	}
	return accountdto.SettingOutput{Key: input.Key, Value: value, Found: true}, nil
}

func (i *Interactor) ClearSettings(ctx context.Context) error {
	i.svc.ClearSettings(ctx)
	return nil
}
