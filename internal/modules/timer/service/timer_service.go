package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"watchless/internal/modules/timer/domain"
	timerout "watchless/internal/modules/timer/port/out"
	"watchless/internal/platform/clock"
	"watchless/internal/platform/id"
	"watchless/internal/platform/logging"
)

const DefaultUserID = "local_user"

type Options struct {
	Interval time.Duration
	UserID   string
}

// Timer is the Idle/Running state machine behind the stopwatch. Elapsed time
// is always recomputed from the persisted start instant, never accumulated,
// so a restored timer shows the same value as one that never stopped.
type Timer struct {
	clock     clock.Clock
	ids       id.Generator
	store     timerout.SnapshotStore
	scheduler clock.Scheduler
	opts      Options
	logger    *slog.Logger

	mu        sync.Mutex
	state     domain.TimerState
	cancel    clock.Cancel
	listeners map[int]func(domain.TimerState)
	nextID    int
}

// NewTimer builds a timer and restores it from the snapshot store.
func NewTimer(ctx context.Context, clk clock.Clock, ids id.Generator, store timerout.SnapshotStore, scheduler clock.Scheduler, opts Options) *Timer {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.UserID == "" {
		opts.UserID = DefaultUserID
	}
	t := &Timer{
		clock:     clk,
		ids:       ids,
		store:     store,
		scheduler: scheduler,
		opts:      opts,
		logger:    logging.For("timer", "service"),
		listeners: map[int]func(domain.TimerState){},
	}
	t.mu.Lock()
	t.adoptLocked(ctx)
	t.mu.Unlock()
	return t
}

// Start begins a fresh session. It reports false and changes nothing when a
// session is already running; the running session is returned instead.
func (t *Timer) Start(ctx context.Context) (domain.ViewingSession, bool) {
	t.mu.Lock()
	if t.state.Running {
		current := t.currentLocked()
		t.mu.Unlock()
		return current, false
	}
	now := t.clock.Now()
	session := domain.NewViewingSession(t.ids.New(), t.opts.UserID, now)
	t.state = domain.TimerState{Running: true, StartTime: &now, CurrentSession: &session}
	t.store.SetTimerState(ctx, t.state.Clone())
	t.scheduleLocked()
	snapshot := t.state.Clone()
	t.mu.Unlock()

	t.logger.Info("timer started", "operation", "start", "session_id", session.ID)
	t.notify(snapshot)
	return session.Clone(), true
}

// Tick recomputes the elapsed time of a running session.
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.state.Running {
		t.mu.Unlock()
		return
	}
	t.state.TotalDuration = t.elapsedLocked()
	snapshot := t.state.Clone()
	t.mu.Unlock()
	t.notify(snapshot)
}

// Stop finalizes the running session. It reports false when idle.
func (t *Timer) Stop(ctx context.Context) (domain.ViewingSession, bool) {
	t.mu.Lock()
	if !t.state.Running {
		t.mu.Unlock()
		return domain.ViewingSession{}, false
	}
	now := t.clock.Now()
	elapsed := t.elapsedAtLocked(now)
	finished := t.state.CurrentSession.Finish(now)
	finished.Duration = domain.DurationMinutes(elapsed)

	t.cancelLocked()
	t.state = domain.TimerState{TotalDuration: elapsed}
	t.store.ClearTimerState(ctx)
	snapshot := t.state.Clone()
	t.mu.Unlock()

	t.logger.Info("timer stopped", "operation", "stop", "session_id", finished.ID, "duration_minutes", finished.Duration)
	t.notify(snapshot)
	return finished, true
}

// Reset forces the timer to idle and wipes the snapshot.
func (t *Timer) Reset(ctx context.Context) {
	t.mu.Lock()
	t.cancelLocked()
	t.state = domain.TimerState{}
	t.store.ClearTimerState(ctx)
	snapshot := t.state.Clone()
	t.mu.Unlock()

	t.logger.Info("timer reset", "operation", "reset")
	t.notify(snapshot)
}

// Sync re-reads the snapshot after it was changed by another process.
func (t *Timer) Sync(ctx context.Context) {
	t.mu.Lock()
	t.adoptLocked(ctx)
	snapshot := t.state.Clone()
	t.mu.Unlock()
	t.notify(snapshot)
}

// State returns a copy of the current state with a fresh elapsed value.
func (t *Timer) State() domain.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Running {
		t.state.TotalDuration = t.elapsedLocked()
	}
	return t.state.Clone()
}

func (t *Timer) Elapsed() time.Duration {
	return t.State().TotalDuration
}

// Subscribe registers fn for every state change and returns a func that
// removes it.
func (t *Timer) Subscribe(fn func(domain.TimerState)) func() {
	t.mu.Lock()
	key := t.nextID
	t.nextID++
	t.listeners[key] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.listeners, key)
		t.mu.Unlock()
	}
}

// Close releases the tick without touching the state or the snapshot.
func (t *Timer) Close() {
	t.mu.Lock()
	t.cancelLocked()
	t.mu.Unlock()
}

func (t *Timer) adoptLocked(ctx context.Context) {
	stored, ok := t.store.TimerState(ctx)
	switch {
	case !ok:
		if t.state.Running {
			t.logger.Info("running session ended elsewhere", "operation", "sync", "session_id", t.state.CurrentSession.ID)
			t.cancelLocked()
			t.state = domain.TimerState{}
		}
	case stored.Running && !stored.Resumable():
		t.logger.Warn("discarding corrupt timer snapshot", "operation", "restore")
		t.cancelLocked()
		t.state = domain.TimerState{}
		t.store.ClearTimerState(ctx)
	case stored.Running:
		sameSession := t.state.Running && t.state.CurrentSession.ID == stored.CurrentSession.ID
		t.state = stored.Clone()
		t.state.TotalDuration = t.elapsedLocked()
		if !sameSession {
			t.cancelLocked()
			t.scheduleLocked()
			t.logger.Info("timer resumed", "operation", "restore", "session_id", stored.CurrentSession.ID)
		}
	default:
		t.cancelLocked()
		t.state = domain.TimerState{TotalDuration: stored.TotalDuration}
	}
}

func (t *Timer) currentLocked() domain.ViewingSession {
	if t.state.CurrentSession == nil {
		return domain.ViewingSession{}
	}
	return t.state.CurrentSession.Clone()
}

func (t *Timer) elapsedLocked() time.Duration {
	return t.elapsedAtLocked(t.clock.Now())
}

func (t *Timer) elapsedAtLocked(now time.Time) time.Duration {
	if t.state.StartTime == nil {
		return 0
	}
	elapsed := now.Sub(*t.state.StartTime)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (t *Timer) scheduleLocked() {
	if t.scheduler == nil || t.cancel != nil {
		return
	}
	t.cancel = t.scheduler.Every(t.opts.Interval, t.Tick)
}

func (t *Timer) cancelLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Timer) notify(state domain.TimerState) {
	t.mu.Lock()
	fns := make([]func(domain.TimerState), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(state.Clone())
	}
}
