package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresHome(t *testing.T) {
	_, err := Load("  ", viper.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "home path is required")
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(home, viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Second, cfg.TimerTick)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, DatabaseSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "local_user", cfg.UserID)
	assert.Equal(t, filepath.Join(home, "state"), cfg.StateDir())
	assert.Equal(t, filepath.Join(home, "server.db"), cfg.ServerDBPath())
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	home := t.TempDir()
	content := "[storage]\ndriver = \"sqlite\"\n\n[auth]\ntoken_ttl = \"2h\"\njwt_secret = \"from-file\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte(content), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("WATCHLESS_TIMER_TICK", "250ms")

	cfg, err := Load(home, viper.New())
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.TimerTick)
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WATCHLESS_STORAGE_DRIVER", "cookies")
	_, err := Load(home, viper.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported storage driver")
}

func TestLoadPostgresNeedsDSN(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WATCHLESS_DATABASE_DRIVER", "postgres")
	_, err := Load(home, viper.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "database.dsn")
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested")
	path, err := WriteDefault(home, false)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = WriteDefault(home, false)
	require.Error(t, err)

	cfg, err := Load(home, viper.New())
	require.NoError(t, err)
	assert.Equal(t, "https://www.googleapis.com/oauth2/v3/certs", cfg.GoogleJWKSURL)
}
