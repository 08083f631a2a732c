package accounts

import (
	"testing"
	"time"

	"custdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}, &models.RefreshToken{}))
	return db
}

func TestEnsureRolesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, EnsureRoles(db))
	require.NoError(t, EnsureRoles(db))
	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	for _, r := range masterRoles {
		assert.Zero(t, r.ID, "the seed list stays untouched")
	}
}

func TestEnsureAdmin(t *testing.T) {
	db := newTestDB(t)
	created, err := EnsureAdmin(db, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(db, "admin", "other-password")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := Authenticate(db, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, user.Role.Name)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)

	assert.ErrorIs(t, Register(db, "  ", "secret1"), ErrUsernameRequired)
	assert.ErrorIs(t, Register(db, "bob", "123"), ErrPasswordTooShort)
	require.NoError(t, Register(db, " bob ", "secret1"))
	assert.ErrorIs(t, Register(db, "bob", "secret2"), ErrUserExists)

	user, err := Authenticate(db, "bob", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, models.RoleUser, user.Role.Name)

	_, err = Authenticate(db, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(db, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, "bob", "secret1"))

	assert.ErrorIs(t, ResetPassword(db, "bob", "x"), ErrPasswordTooShort)
	assert.ErrorIs(t, ResetPassword(db, "nobody", "secret2"), gorm.ErrRecordNotFound)
	require.NoError(t, ResetPassword(db, "bob", "secret2"))

	_, err := Authenticate(db, "bob", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(db, "bob", "secret2")
	assert.NoError(t, err)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	user, err := CreateUser(db, "bob", "secret1", models.RoleUser)
	require.NoError(t, err)

	raw, err := IssueRefreshToken(db, user.ID, time.Hour)
	require.NoError(t, err)

	var stored models.RefreshToken
	require.NoError(t, db.First(&stored).Error)
	assert.NotEqual(t, raw, stored.TokenHash)

	got, fresh, err := RotateRefreshToken(db, raw, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, models.RoleUser, got.Role.Name)
	assert.NotEqual(t, raw, fresh)

	_, _, err = RotateRefreshToken(db, raw, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	require.NoError(t, RevokeRefreshToken(db, fresh))
	_, _, err = RotateRefreshToken(db, fresh, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	assert.ErrorIs(t, RevokeRefreshToken(db, "unknown"), gorm.ErrRecordNotFound)
}

func TestExpiredRefreshToken(t *testing.T) {
	db := newTestDB(t)
	user, err := CreateUser(db, "bob", "secret1", models.RoleUser)
	require.NoError(t, err)
	raw, err := IssueRefreshToken(db, user.ID, -time.Minute)
	require.NoError(t, err)
	_, _, err = RotateRefreshToken(db, raw, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}
