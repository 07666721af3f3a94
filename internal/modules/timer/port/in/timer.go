package in

import (
	"context"

	"watchless/internal/modules/timer/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	Stop(ctx context.Context) (dto.StopOutput, error)
	Reset(ctx context.Context) error
	Status(ctx context.Context) (dto.StatusOutput, error)
	Sync(ctx context.Context) (dto.StatusOutput, error)
	Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error)
	Summary(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error)
	Subscribe(fn func(dto.StatusOutput)) func()
}
