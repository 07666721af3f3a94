package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "watchless/internal/modules/auth/domain"
	"watchless/internal/modules/timer/domain"
	timerdto "watchless/internal/modules/timer/dto"
	timerin "watchless/internal/modules/timer/port/in"
	timerout "watchless/internal/modules/timer/port/out"
	"watchless/internal/modules/timer/service"
	"watchless/internal/platform/clock"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/logging"
)

type Interactor struct {
	timer   *service.Timer
	journal timerout.Journal
	profile timerout.ProfileReader
	clock   clock.Clock
	logger  *slog.Logger
}

// NewInteractor wires the timer to its journal and the local profile. Both
// journal and profile are optional.
func NewInteractor(timer *service.Timer, journal timerout.Journal, profile timerout.ProfileReader, clk clock.Clock) timerin.Usecase {
	return &Interactor{timer: timer, journal: journal, profile: profile, clock: clk, logger: logging.For("timer", "usecase")}
}

func (i *Interactor) Start(ctx context.Context) (timerdto.StartOutput, error) {
	session, started := i.timer.Start(ctx)
	return timerdto.StartOutput{Started: started, Session: timerdto.FromSession(session)}, nil
}

func (i *Interactor) Stop(ctx context.Context) (timerdto.StopOutput, error) {
	session, stopped := i.timer.Stop(ctx)
	if !stopped {
		return timerdto.StopOutput{}, nil
	}
	return timerdto.StopOutput{Stopped: true, Session: timerdto.FromSession(session)}, nil
}

func (i *Interactor) Reset(ctx context.Context) error {
	i.timer.Reset(ctx)
	return nil
}

func (i *Interactor) Status(context.Context) (timerdto.StatusOutput, error) {
	return statusOf(i.timer.State()), nil
}

func (i *Interactor) Sync(ctx context.Context) (timerdto.StatusOutput, error) {
	i.timer.Sync(ctx)
	return statusOf(i.timer.State()), nil
}

// Record closes the show-name prompt for a finished session. Every outcome is
// recorded; only a save attaches the trimmed name.
func (i *Interactor) Record(ctx context.Context, input timerdto.RecordInput) (timerdto.RecordOutput, error) {
	if !input.Outcome.Valid() {
		return timerdto.RecordOutput{}, fmt.Errorf("%w: unknown prompt outcome %q", apperrors.ErrInvalidInput, input.Outcome)
	}
	session := input.Session.ToDomain()
	if session.ID == "" || session.IsActive || session.EndTime == nil {
		return timerdto.RecordOutput{}, fmt.Errorf("%w: session is not finished", apperrors.ErrInvalidInput)
	}
	if input.Outcome == domain.NameSaved {
		session = session.WithShowName(strings.TrimSpace(input.ShowName))
	} else {
		session = session.WithShowName("")
	}

	i.logger.Info("session recorded",
		"operation", "record",
		"session_id", session.ID,
		"duration_minutes", session.Duration,
		"show_name", session.ShowName,
		"outcome", string(input.Outcome),
	)
	out := timerdto.RecordOutput{Session: timerdto.FromSession(session)}
	if i.journal == nil {
		return out, nil
	}
	path, err := i.journal.Save(ctx, session, input.Outcome)
	if err != nil {
		return timerdto.RecordOutput{}, err
	}
	out.Path = path
	return out, nil
}

// Summary totals journaled minutes for today and the current Monday-first
// week in the given location.
func (i *Interactor) Summary(ctx context.Context, input timerdto.SummaryInput) (timerdto.SummaryOutput, error) {
	loc := input.Location
	if loc == nil {
		loc = time.Local
	}
	out := timerdto.SummaryOutput{DailyGoal: authdomain.DefaultDailyGoalMinutes}
	if i.profile != nil {
		if user, ok := i.profile.User(ctx); ok && user.Preferences.DailyGoal > 0 {
			out.DailyGoal = user.Preferences.DailyGoal
			out.HasGoal = true
		}
	}
	if i.journal == nil {
		return out, nil
	}

	now := i.clock.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	tomorrow := today.AddDate(0, 0, 1)

	sessions, err := i.journal.List(ctx, weekStart, tomorrow)
	if err != nil {
		return timerdto.SummaryOutput{}, err
	}
	for _, s := range sessions {
		out.WeekMin += s.Duration
		if !s.StartTime.Before(today) {
			out.TodayMin += s.Duration
		}
	}
	return out, nil
}

func (i *Interactor) Subscribe(fn func(timerdto.StatusOutput)) func() {
	return i.timer.Subscribe(func(state domain.TimerState) { fn(statusOf(state)) })
}

func statusOf(state domain.TimerState) timerdto.StatusOutput {
	out := timerdto.StatusOutput{
		State:   state.State(),
		Elapsed: state.TotalDuration,
		Clock:   domain.FormatClock(state.TotalDuration),
	}
	if state.CurrentSession != nil {
		session := timerdto.FromSession(*state.CurrentSession)
		out.Session = &session
	}
	return out
}
