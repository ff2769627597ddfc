package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scheduled/internal/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://u:p@localhost:5432/scheduled")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Imports.SessionTTL)
	assert.Equal(t, 5, cfg.Imports.PreviewLimit)
	assert.Equal(t, "*/15 * * * *", cfg.Domains.RecheckCron)
	assert.Equal(t, "custom.scheduled.app", cfg.Domains.CNAMETarget)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "production", cfg.Log.Sentry.Environment)
	assert.Equal(t, "base.html", cfg.Mailer.Layout)
	assert.False(t, cfg.Storage.Enabled())
	assert.Empty(t, cfg.Redis.URL)
}

func TestParse_Redis(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://u:p@localhost:5432/scheduled")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "4")

	cfg, err := config.Parse()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 4, cfg.Redis.PoolSize)
}

func TestParse_MissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_CONN_URL"))

	_, err := config.Parse()
	assert.ErrorIs(t, err, config.ErrLoad)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_CONN_URL=postgres://dotenv/db\nHTTP_ADDR=:9090\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("DATABASE_CONN_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_CONN_URL"))
	t.Cleanup(func() { _ = os.Unsetenv("DATABASE_CONN_URL") })

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://dotenv/db", cfg.Database.ConnectionString)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	t.Setenv("DATABASE_CONN_URL", "postgres://u:p@localhost:5432/scheduled")

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
