package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mhadifilms/reverie/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MUSIC_DIR", "/srv/music")
	t.Setenv("RESOLVER_BASE_URL", "http://resolver.local")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/srv/music", cfg.MusicDir)
	assert.Equal(t, "reverie.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CleanupInterval)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "reverie", cfg.Telemetry.ServiceName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Web.BindAddress)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MUSIC_DIR", "/srv/music")
	t.Setenv("RESOLVER_BASE_URL", "http://resolver.local")
	t.Setenv("MAX_CONCURRENT", "8")
	t.Setenv("TELEMETRY_ENABLED", "false")
	t.Setenv("WEB_BIND_ADDRESS", "127.0.0.1:9090")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.MaxConcurrent)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "127.0.0.1:9090", cfg.Web.BindAddress)
}

func TestLoadConfigRequiresMusicDir(t *testing.T) {
	// t.Setenv registers the restore; the unset makes the var truly absent.
	t.Setenv("MUSIC_DIR", "")
	os.Unsetenv("MUSIC_DIR")
	t.Setenv("RESOLVER_BASE_URL", "http://resolver.local")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tc := range tests {
		cfg := &config.Config{LogLevel: tc.level}
		assert.Equal(t, tc.want, cfg.SlogLevel(), "level %q", tc.level)
	}
}
