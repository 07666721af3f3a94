package usecase

import (
	"context"

	analyticsdto "watchless/internal/modules/analytics/dto"
	analyticsin "watchless/internal/modules/analytics/port/in"
	"watchless/internal/modules/analytics/service"
)

type Interactor struct {
	svc *service.AnalyticsService
}

func NewInteractor(svc *service.AnalyticsService) analyticsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Daily(ctx context.Context, input analyticsdto.ReportInput) (analyticsdto.DailyReport, error) {
	report, err := i.svc.Daily(ctx, input.UserID, input.Period)
	if err != nil {
		return analyticsdto.DailyReport{}, err
	}
	return analyticsdto.FromDaily(report), nil
}

func (i *Interactor) Weekly(ctx context.Context, input analyticsdto.ReportInput) (analyticsdto.WeeklyReport, error) {
	report, err := i.svc.Weekly(ctx, input.UserID, input.Period)
	if err != nil {
		return analyticsdto.WeeklyReport{}, err
	}
	return analyticsdto.FromWeekly(report), nil
}

func (i *Interactor) Monthly(ctx context.Context, input analyticsdto.ReportInput) (analyticsdto.MonthlyReport, error) {
	report, err := i.svc.Monthly(ctx, input.UserID, input.Period)
	if err != nil {
		return analyticsdto.MonthlyReport{}, err
	}
	return analyticsdto.FromMonthly(report), nil
}
