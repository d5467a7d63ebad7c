package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so a developer's .env is not picked up
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Data.Source)
	assert.Equal(t, time.Hour, cfg.Data.RefreshInterval)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "waterTracker", cfg.Intake.Namespace)
	assert.Equal(t, "TEL", cfg.Team.Code)
	assert.Equal(t, 8, cfg.Team.PlayoffCutoff)
	assert.Equal(t, 34, cfg.Team.SeasonGames)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("DATA_SOURCE", "http")
	t.Setenv("DATA_BASE_URL", "https://example.github.io/data")
	t.Setenv("REFRESH_INTERVAL", "15m")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http", cfg.Data.Source)
	assert.Equal(t, "https://example.github.io/data", cfg.Data.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Data.RefreshInterval)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("PLAYOFF_CUTOFF", "eight")
	t.Setenv("REFRESH_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Team.PlayoffCutoff)
	assert.Equal(t, time.Hour, cfg.Data.RefreshInterval)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
data:
  refresh_interval: 30m
store:
  driver: memory
team:
  code: PAN
  simulations: 500
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, 30*time.Minute, cfg.Data.RefreshInterval)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "PAN", cfg.Team.Code)
	assert.Equal(t, 500, cfg.Team.Simulations)
	assert.Equal(t, 4, cfg.Team.FinalFourCutoff, "unset keys keep defaults")
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("INTAKE_NAMESPACE=coffeeTracker\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("INTAKE_NAMESPACE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "coffeeTracker", cfg.Intake.Namespace)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"http without base url", map[string]string{"DATA_SOURCE": "http"}},
		{"unknown source", map[string]string{"DATA_SOURCE": "ftp"}},
		{"unknown cache", map[string]string{"DATA_CACHE": "disk"}},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}},
		{"missing config file", map[string]string{"CONFIG_FILE": "/nonexistent/dashboard.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
