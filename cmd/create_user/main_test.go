package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"custdesk/models"
	"custdesk/pkg/accounts"
	"custdesk/pkg/config"
	"custdesk/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupEnv(t *testing.T) config.DatabaseConfig {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "custdesk.db"), LogLevel: "silent"}
	t.Setenv("DB_DRIVER", cfg.Driver)
	t.Setenv("DB_DSN", cfg.DSN)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Zero(t, database.Migrate(db, zap.NewNop()))
	require.NoError(t, database.Close(db))
	return cfg
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestCreateUser(t *testing.T) {
	cfg := setupEnv(t)

	assert.Contains(t, run(t, "alice", "secret1"), "created user alice")
	assert.Contains(t, run(t, "boss", "secret1", "--admin"), "role=administrator")
	assert.Contains(t, run(t, "alice", "secret1"), "already exists")

	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)
	boss, err := accounts.Authenticate(db, "boss", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, boss.Role.Name)
}

func TestCreateUserNeedsTwoArgs(t *testing.T) {
	cmd := newCmd()
	cmd.SetArgs([]string{"alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
