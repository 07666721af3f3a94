package in

import (
	"context"

	"watchless/internal/modules/account/dto"
)

type Usecase interface {
	Login(ctx context.Context, credential string) (dto.Profile, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (dto.Profile, error)
	Setting(ctx context.Context, key string) (dto.SettingOutput, error)
	Settings(ctx context.Context) (map[string]any, error)
	SetSetting(ctx context.Context, input dto.SetSettingInput) (dto.SettingOutput, error)
	ClearSettings(ctx context.Context) error
}
