package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	FileName  = "config.toml"
	envPrefix = "WATCHLESS"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"

	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	HomeDir string

	ServerAddr string
	APIBaseURL string

	JWTSecret      string
	GoogleClientID string
	GoogleJWKSURL  string
	TokenTTL       time.Duration

	DatabaseDriver string
	DatabaseDSN    string
	RedisAddr      string

	StorageDriver string
	TimerTick     time.Duration
	UserID        string

	LogLevel  string
	LogFormat string
}

// Defaults mirrors the layout of config.toml.
func Defaults() map[string]any {
	return map[string]any{
		"server": map[string]any{"addr": ":8080"},
		"api":    map[string]any{"base_url": "http://localhost:8080"},
		"auth": map[string]any{
			"jwt_secret":       "",
			"google_client_id": "",
			"google_jwks_url":  "https://www.googleapis.com/oauth2/v3/certs",
			"token_ttl":        "24h",
		},
		"database": map[string]any{"driver": DatabaseSQLite, "dsn": ""},
		"redis":    map[string]any{"addr": ""},
		"storage":  map[string]any{"driver": StorageFile},
		"timer":    map[string]any{"tick": "1s", "user_id": "local_user"},
		"log":      map[string]any{"level": "info", "format": "text"},
	}
}

// Load resolves configuration from defaults, <home>/config.toml and
// WATCHLESS_* environment variables, in increasing precedence.
func Load(homeDir string, v *viper.Viper) (Config, error) {
	if strings.TrimSpace(homeDir) == "" {
		return Config{}, fmt.Errorf("home path is required")
	}
	if v == nil {
		v = viper.New()
	}
	for section, values := range Defaults() {
		for key, value := range values.(map[string]any) {
			v.SetDefault(section+"."+key, value)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// unprefixed names kept for older deployments
	if err := v.BindEnv("auth.jwt_secret", envPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET"); err != nil {
		return Config{}, fmt.Errorf("bind jwt secret env: %w", err)
	}
	if err := v.BindEnv("auth.google_client_id", envPrefix+"_AUTH_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID"); err != nil {
		return Config{}, fmt.Errorf("bind google client env: %w", err)
	}

	path := filepath.Join(homeDir, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat config file: %w", err)
	}

	cfg := Config{
		HomeDir:        homeDir,
		ServerAddr:     v.GetString("server.addr"),
		APIBaseURL:     strings.TrimRight(v.GetString("api.base_url"), "/"),
		JWTSecret:      v.GetString("auth.jwt_secret"),
		GoogleClientID: v.GetString("auth.google_client_id"),
		GoogleJWKSURL:  v.GetString("auth.google_jwks_url"),
		TokenTTL:       v.GetDuration("auth.token_ttl"),
		DatabaseDriver: strings.ToLower(v.GetString("database.driver")),
		DatabaseDSN:    v.GetString("database.dsn"),
		RedisAddr:      v.GetString("redis.addr"),
		StorageDriver:  strings.ToLower(v.GetString("storage.driver")),
		TimerTick:      v.GetDuration("timer.tick"),
		UserID:         v.GetString("timer.user_id"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	switch c.DatabaseDriver {
	case DatabaseSQLite, DatabasePostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver == DatabasePostgres && c.DatabaseDSN == "" {
		return fmt.Errorf("database.dsn is required for postgres")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.TimerTick <= 0 {
		return fmt.Errorf("timer.tick must be positive")
	}
	return nil
}

// StateDir holds the local key-value snapshot files.
func (c Config) StateDir() string { return filepath.Join(c.HomeDir, "state") }

func (c Config) StateDBPath() string { return filepath.Join(c.HomeDir, "state.db") }

func (c Config) JournalDir() string { return filepath.Join(c.HomeDir, "journal") }

func (c Config) ServerDBPath() string {
	if c.DatabaseDriver == DatabaseSQLite && c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return filepath.Join(c.HomeDir, "server.db")
}

func (c Config) LogPath() string { return filepath.Join(c.HomeDir, "watchless.log") }

// WriteDefault writes the default config.toml into homeDir. An existing file
// is left untouched unless force is set.
func WriteDefault(homeDir string, force bool) (string, error) {
	path := filepath.Join(homeDir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(homeDir, 0o700); err != nil {
		return "", fmt.Errorf("create home dir: %w", err)
	}
	payload, err := toml.Marshal(Defaults())
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
