package bootstrap

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	timerdto "watchless/internal/modules/timer/dto"
	uiapp "watchless/internal/ui/app"
)

// RunTUI drives the timer screen until the user quits or ctx is cancelled.
// Ticks and snapshot changes from other processes are pushed into the program.
func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := uiapp.NewModel(app.Timer)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := app.Timer.Subscribe(func(status timerdto.StatusOutput) {
		program.Send(uiapp.StatusMsg(status))
	})
	defer unsubscribe()

	if err := app.WatchSnapshots(ctx); err != nil {
		app.logger.WarnContext(ctx, "snapshot watch unavailable", "operation", "watch_snapshot", "error", err.Error())
	}

	final, err := program.Run()
	if m, ok := final.(uiapp.Model); ok {
		recordPending(app, m)
	}
	return err
}

// recordPending journals a session whose name prompt was still open when the
// program exited, so a stop is never lost.
func recordPending(app *App, m uiapp.Model) {
	session, ok := m.Pending()
	if !ok {
		return
	}
	ctx := context.Background()
	input := timerdto.RecordInput{Session: session, Outcome: timerdto.OutcomeDismissed}
	if _, err := app.Timer.Record(ctx, input); err != nil {
		app.logger.ErrorContext(ctx, "record pending session failed", "operation", "record", "session_id", session.ID, "error", err.Error())
		return
	}
	app.logger.InfoContext(ctx, "pending session recorded on exit", "operation", "record", "outcome", "dismissed", "session_id", session.ID)
}
