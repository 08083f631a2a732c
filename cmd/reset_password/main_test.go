package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"custdesk/pkg/accounts"
	"custdesk/pkg/config"
	"custdesk/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResetPassword(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "custdesk.db"), LogLevel: "silent"}
	t.Setenv("DB_DRIVER", cfg.Driver)
	t.Setenv("DB_DSN", cfg.DSN)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Zero(t, database.Migrate(db, zap.NewNop()))
	require.NoError(t, accounts.Register(db, "alice", "secret1"))
	require.NoError(t, database.Close(db))

	var out bytes.Buffer
	cmd := newCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--username", "alice", "--password", "secret2"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Password reset for user alice")

	db, err = database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)
	_, err = accounts.Authenticate(db, "alice", "secret2")
	assert.NoError(t, err)
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	cmd := newCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--username", "alice", "--password", "x"})
	assert.ErrorIs(t, cmd.Execute(), accounts.ErrPasswordTooShort)
}
