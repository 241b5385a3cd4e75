package app

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CSRF_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "CGCEL", cfg.GRCCompany)
	require.EqualValues(t, 10<<20, cfg.UploadMaxBytes)
	require.False(t, cfg.IsProduction())
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{CSRFSecret: "x", GRCCompany: "ALL", UploadMaxBytes: 1}
	require.ErrorContains(t, cfg.Validate(), "grc company")

	cfg.GRCCompany = "CGPISL"
	require.NoError(t, cfg.Validate())

	cfg.UploadMaxBytes = 0
	require.ErrorContains(t, cfg.Validate(), "upload max bytes")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestConnectionOptions(t *testing.T) {
	cfg := Config{PGDSN: "postgres://x", PGMaxConns: 4, RedisAddr: "redis:6379", RedisDB: 1}

	pg := cfg.Postgres("worker")
	require.Equal(t, "postgres://x", pg.DSN)
	require.EqualValues(t, 4, pg.MaxConns)
	require.Equal(t, "servicedesk-worker", pg.ApplicationName)

	rd := cfg.Redis()
	require.Equal(t, "redis:6379", rd.Addr)
	require.Equal(t, 1, rd.DB)
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv(testModeEnv, "true")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	require.False(t, InTestMode())

	t.Setenv(testModeEnv, "yes")
	RefreshTestMode()
	require.False(t, InTestMode())
}
