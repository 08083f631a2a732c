package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndLegacyEnv(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost dbname=custdesk")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=localhost dbname=custdesk", cfg.Database.DSN)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, devSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
}

func TestLoadFileAndPrefixedEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("app:\n  port: \"9000\"\ndatabase:\n  driver: sqlite\n  dsn: file.db\njwt:\n  access_ttl: 15m\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("CUSTDESK_LOG_FORMAT", "json")
	t.Setenv("JWT_SECRET", "s3cret")

	l := NewLoader(dir)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.yaml"), l.ConfigFile())
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file.db", cfg.Database.DSN)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		_, err := NewLoader(t.TempDir()).Load()
		assert.ErrorContains(t, err, "DB_DSN")
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DSN", "x")
		t.Setenv("DB_DRIVER", "mysql")
		_, err := NewLoader(t.TempDir()).Load()
		assert.ErrorContains(t, err, "unsupported database driver")
	})
	t.Run("production requires a secret", func(t *testing.T) {
		t.Setenv("DB_DSN", "x")
		t.Setenv("CUSTDESK_APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := NewLoader(t.TempDir()).Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# local overrides\nCUSTDESK_TEST_A=from-file\nCUSTDESK_TEST_B=from-file\n"), 0o644))
	t.Setenv("CUSTDESK_TEST_B", "from-env")
	os.Unsetenv("CUSTDESK_TEST_A")
	t.Cleanup(func() { os.Unsetenv("CUSTDESK_TEST_A") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CUSTDESK_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("CUSTDESK_TEST_B"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
