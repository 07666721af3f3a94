package in

import (
	"context"
	"time"

	timerdto "watchless/internal/modules/timer/dto"
	timerin "watchless/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) (timerdto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

// Stop ends the running session and records it straight away, named when
// showName is set and skipped otherwise.
func (h CLIHandler) Stop(ctx context.Context, showName string) (timerdto.StopOutput, timerdto.RecordOutput, error) {
	stopped, err := h.usecase.Stop(ctx)
	if err != nil || !stopped.Stopped {
		return stopped, timerdto.RecordOutput{}, err
	}
	outcome := timerdto.OutcomeFor(showName)
	recorded, err := h.usecase.Record(ctx, timerdto.RecordInput{Session: stopped.Session, ShowName: showName, Outcome: outcome})
	if err != nil {
		return stopped, timerdto.RecordOutput{}, err
	}
	return stopped, recorded, nil
}

func (h CLIHandler) Status(ctx context.Context) (timerdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Summary(ctx context.Context) (timerdto.SummaryOutput, error) {
	return h.usecase.Summary(ctx, timerdto.SummaryInput{Location: time.Local})
}
