package in

import (
	"context"

	accountdto "watchless/internal/modules/account/dto"
	accountin "watchless/internal/modules/account/port/in"
)

type CLIHandler struct {
	usecase accountin.Usecase
}

func NewCLIHandler(usecase accountin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, credential string) (accountdto.Profile, error) {
	return h.usecase.Login(ctx, credential)
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) Whoami(ctx context.Context) (accountdto.Profile, error) {
	return h.usecase.Whoami(ctx)
}

// Get returns one setting, or every setting when key is empty.
func (h CLIHandler) Get(ctx context.Context, key string) (any, bool, error) {
	if key == "" {
		all, err := h.usecase.Settings(ctx)
		return all, true, err
	}
	out, err := h.usecase.Setting(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return out.Value, out.Found, nil
}

func (h CLIHandler) Set(ctx context.Context, key, raw string) (accountdto.SettingOutput, error) {
	return h.usecase.SetSetting(ctx, accountdto.SetSettingInput{Key: key, Raw: raw})
}

func (h CLIHandler) Clear(ctx context.Context) error {
	return h.usecase.ClearSettings(ctx)
}
