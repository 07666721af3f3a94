package usecase

import (
	"context"

	viewingdto "watchless/internal/modules/viewing/dto"
	viewingin "watchless/internal/modules/viewing/port/in"
	"watchless/internal/modules/viewing/service"
)

type Interactor struct {
	svc *service.ViewingService
}

func NewInteractor(svc *service.ViewingService) viewingin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, userID string) (viewingdto.StartOutput, error) {
	session, started, err := i.svc.Start(ctx, userID)
	if err != nil {
		return viewingdto.StartOutput{}, err
	}
	return viewingdto.StartOutput{Session: viewingdto.FromSession(session), AlreadyActive: !started}, nil
}

func (i *Interactor) Stop(ctx context.Context, input viewingdto.StopInput) (viewingdto.SessionOutput, error) {
	session, err := i.svc.Stop(ctx, input.UserID, input.SessionID, input.ShowName)
	if err != nil {
		return viewingdto.SessionOutput{}, err
	}
	return viewingdto.FromSession(session), nil
}

func (i *Interactor) Active(ctx context.Context, userID string) (*viewingdto.SessionOutput, error) {
	session, ok, err := i.svc.Active(ctx, userID)
	if err != nil || !ok {
		return nil, err
	}
	out := viewingdto.FromSession(session)
	return &out, nil
}

func (i *Interactor) Update(ctx context.Context, input viewingdto.UpdateInput) (viewingdto.SessionOutput, error) {
	session, err := i.svc.Rename(ctx, input.UserID, input.SessionID, input.ShowName)
	if err != nil {
		return viewingdto.SessionOutput{}, err
	}
	return viewingdto.FromSession(session), nil
}
