package in

import (
	"context"

	"watchless/internal/modules/analytics/dto"
)

type Usecase interface {
	Daily(ctx context.Context, input dto.ReportInput) (dto.DailyReport, error)
	Weekly(ctx context.Context, input dto.ReportInput) (dto.WeeklyReport, error)
	Monthly(ctx context.Context, input dto.ReportInput) (dto.MonthlyReport, error)
}
