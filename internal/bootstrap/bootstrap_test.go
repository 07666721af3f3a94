package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timerdomain "watchless/internal/modules/timer/domain"
	"watchless/internal/platform/config"
	uiapp "watchless/internal/ui/app"
)

func localConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	return config.Config{
		HomeDir:       t.TempDir(),
		APIBaseURL:    "http://127.0.0.1:1",
		StorageDriver: driver,
		TimerTick:     time.Hour,
		UserID:        "local_user",
	}
}

func TestLocalAppStartStopRecords(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t, config.StorageMemory)
	app, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	started, err := app.TimerCLI.Start(ctx)
	require.NoError(t, err)
	require.True(t, started.Started)
	assert.Equal(t, "local_user", started.Session.UserID)

	again, err := app.TimerCLI.Start(ctx)
	require.NoError(t, err)
	assert.False(t, again.Started)
	assert.Equal(t, started.Session.ID, again.Session.ID)

	stopped, recorded, err := app.TimerCLI.Stop(ctx, "Dark")
	require.NoError(t, err)
	require.True(t, stopped.Stopped)
	assert.Equal(t, "Dark", recorded.Session.ShowName)
	require.NotEmpty(t, recorded.Path)
	_, err = os.Stat(recorded.Path)
	assert.NoError(t, err, "journal note written")
	rel, err := filepath.Rel(cfg.JournalDir(), recorded.Path)
	require.NoError(t, err)
	assert.NotContains(t, rel, "..")

	status, err := app.TimerCLI.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, status.Session)
}

func TestLocalAppSettingsAndWhoami(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, localConfig(t, config.StorageFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.AccountCLI.Whoami(ctx)
	assert.Error(t, err)

	out, err := app.AccountCLI.Set(ctx, "theme", `"dark"`)
	require.NoError(t, err)
	assert.Equal(t, "dark", out.Value)

	value, found, err := app.AccountCLI.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", value)

	require.NoError(t, app.AccountCLI.Clear(ctx))
	_, found, err = app.AccountCLI.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t, config.StorageFile)

	first, err := New(ctx, cfg)
	require.NoError(t, err)
	started, err := first.TimerCLI.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	status, err := second.TimerCLI.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Session)
	assert.Equal(t, started.Session.ID, status.Session.ID)
}

func TestRecordPendingJournalsDismissedSession(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t, config.StorageMemory)
	app, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.TimerCLI.Start(ctx)
	require.NoError(t, err)

	var model tea.Model = uiapp.NewModel(app.Timer)
	model, _ = model.Update(uiapp.StatusMsg{State: timerdomain.StateRunning})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())

	m := model.(uiapp.Model)
	_, ok := m.Pending()
	require.True(t, ok, "stop leaves the session waiting on the prompt")

	recordPending(app, m)

	var notes int
	err = filepath.WalkDir(cfg.JournalDir(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" {
			notes++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notes, "dismissed session journaled on exit")
}
