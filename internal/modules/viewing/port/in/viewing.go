package in

import (
	"context"

	"watchless/internal/modules/viewing/dto"
)

type Usecase interface {
	Start(ctx context.Context, userID string) (dto.StartOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.SessionOutput, error)
	Active(ctx context.Context, userID string) (*dto.SessionOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) (dto.SessionOutput, error)
}
