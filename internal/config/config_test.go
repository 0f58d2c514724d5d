package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dayrise.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	result, err := LoadFrom("", envMap(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "UTC", cfg.Server.DefaultTimezone)
	assert.Equal(t, 100, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.RateWindow.Duration)
	assert.Equal(t, 60, cfg.Stats.LookbackDays)
	assert.Equal(t, 60, cfg.Stats.MaxWalk)
	assert.Equal(t, 10*time.Minute, cfg.Stats.CacheTTL.Duration)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.Empty(t, result.Warnings)
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	if _, err := time.LoadLocation("Europe/Rome"); err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	path := writeConfig(t, `
[server]
port = "9090"
default_timezone = "Europe/Rome"
rate_window = "30s"

[database]
name = "dayrise_db"
user = "file_user"

[auth]
jwt_secret = "from-file"
token_ttl = "2h"

[stats]
max_walk = 90
`)

	result, err := LoadFrom(path, envMap(map[string]string{
		"DB_USER":         "env_user",
		"STREAK_MAX_WALK": "120",
	}))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "Europe/Rome", cfg.Server.DefaultTimezone)
	assert.Equal(t, 30*time.Second, cfg.Server.RateWindow.Duration)
	assert.Equal(t, "env_user", cfg.Database.User, "environment beats the file")
	assert.Equal(t, "dayrise_db", cfg.Database.Name)
	assert.Equal(t, "localhost", cfg.Database.Host, "untouched keys keep defaults")
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.Equal(t, 120, cfg.Stats.MaxWalk)
}

func TestLoadFrom_Warnings(t *testing.T) {
	t.Run("Unknown keys", func(t *testing.T) {
		path := writeConfig(t, `
[stats]
max_walk = 30
colour = "blue"
`)
		result, err := LoadFrom(path, envMap(map[string]string{"JWT_SECRET": "x"}))
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "stats.colour")
	})

	t.Run("Missing file", func(t *testing.T) {
		result, err := LoadFrom("/nonexistent/dayrise.toml", envMap(map[string]string{"JWT_SECRET": "x"}))
		require.NoError(t, err)
		assert.Len(t, result.Warnings, 1)
	})
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"Missing secret", map[string]string{}, "JWT_SECRET is required"},
		{"Bad integer", map[string]string{"JWT_SECRET": "x", "STREAK_MAX_WALK": "many"}, "STREAK_MAX_WALK"},
		{"Bad duration", map[string]string{"JWT_SECRET": "x", "STATS_CACHE_TTL": "soon"}, "STATS_CACHE_TTL"},
		{"Bad port", map[string]string{"JWT_SECRET": "x", "PORT": "99999"}, "server port"},
		{"Bad timezone", map[string]string{"JWT_SECRET": "x", "DEFAULT_TIMEZONE": "Mars/Base"}, "default_timezone"},
		{"Short lookback", map[string]string{"JWT_SECRET": "x", "STATS_LOOKBACK_DAYS": "7"}, "lookback_days"},
		{"Non-positive walk", map[string]string{"JWT_SECRET": "x", "STREAK_MAX_WALK": "0"}, "max_walk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom("", envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("Malformed file", func(t *testing.T) {
		path := writeConfig(t, "[server\nport = ")
		_, err := LoadFrom(path, envMap(map[string]string{"JWT_SECRET": "x"}))
		assert.ErrorContains(t, err, "parsing config file")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{User: "u", Password: "p", Name: "db", Host: "h", Port: "5432"}
	assert.Equal(t, "postgres://u:p@h:5432/db?sslmode=disable", cfg.DSN())
}
