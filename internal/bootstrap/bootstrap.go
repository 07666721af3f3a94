package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	accountinadapter "watchless/internal/modules/account/adapter/in"
	accountoutadapter "watchless/internal/modules/account/adapter/out"
	accountservice "watchless/internal/modules/account/service"
	accountusecase "watchless/internal/modules/account/usecase"
	timerinadapter "watchless/internal/modules/timer/adapter/in"
	timeroutadapter "watchless/internal/modules/timer/adapter/out"
	timerin "watchless/internal/modules/timer/port/in"
	timerservice "watchless/internal/modules/timer/service"
	timerusecase "watchless/internal/modules/timer/usecase"
	"watchless/internal/platform/clock"
	"watchless/internal/platform/config"
	"watchless/internal/platform/id"
	"watchless/internal/platform/kv"
	"watchless/internal/platform/logging"
)

// App is the local side of WatchLess: the timer, its journal and the
// signed-in profile, all backed by the configured key-value store.
type App struct {
	Config     config.Config
	TimerCLI   timerinadapter.CLIHandler
	AccountCLI accountinadapter.CLIHandler
	Timer      timerin.Usecase

	store   kv.Store
	timer   *timerservice.Timer
	closers []func() error
	logger  *slog.Logger
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.For("bootstrap", "app")
	clk := clock.SystemClock{}

	store, closers, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	local := timeroutadapter.NewLocalStore(store)
	if !local.IsAvailable(ctx) {
		logger.WarnContext(ctx, "local store unavailable, falling back to memory", "operation", "bootstrap", "driver", cfg.StorageDriver)
		closeAll(closers)
		closers = nil
		store = kv.NewMemoryStore()
		local = timeroutadapter.NewLocalStore(store)
	}

	userID := cfg.UserID
	if user, ok := local.User(ctx); ok && user.ID != "" {
		userID = user.ID
	}
	timer := timerservice.NewTimer(ctx, clk, id.SessionID{Now: clk.Now}, local, clock.TickerScheduler{}, timerservice.Options{
		Interval: cfg.TimerTick,
		UserID:   userID,
	})
	journal := timeroutadapter.NewMarkdownJournal(cfg.JournalDir(), time.Local)
	timerUC := timerusecase.NewInteractor(timer, journal, local, clk)

	accountUC := accountusecase.NewInteractor(accountservice.NewAccountService(
		accountoutadapter.APIClient{BaseURL: cfg.APIBaseURL},
		local,
	))

	return &App{
		Config:     cfg,
		TimerCLI:   timerinadapter.NewCLIHandler(timerUC),
		AccountCLI: accountinadapter.NewCLIHandler(accountUC),
		Timer:      timerUC,
		store:      store,
		timer:      timer,
		closers:    closers,
		logger:     logger,
	}, nil
}

// WatchSnapshots re-syncs the timer whenever another process rewrites the
// timer snapshot. Stores that cannot watch are ignored.
func (a *App) WatchSnapshots(ctx context.Context) error {
	watcher, ok := a.store.(kv.Watcher)
	if !ok {
		return nil
	}
	return watcher.Watch(ctx, func(key string) {
		if key != timeroutadapter.KeyTimerState {
			return
		}
		if _, err := a.Timer.Sync(ctx); err != nil {
			a.logger.WarnContext(ctx, "timer sync failed", "operation", "watch_snapshot", "error", err.Error())
		}
	})
}

// Close stops the tick and releases the store. The running session, if any,
// stays in the snapshot.
func (a *App) Close() error {
	a.timer.Close()
	return closeAll(a.closers)
}

func openStore(cfg config.Config) (kv.Store, []func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return kv.NewMemoryStore(), nil, nil
	case config.StorageSQLite:
		store, err := kv.NewSQLiteStore(cfg.StateDBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite state store: %w", err)
		}
		return store, []func() error{store.Close}, nil
	default:
		return kv.NewFileStore(cfg.StateDir()), nil, nil
	}
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
