// Package accounts manages API users, their roles and refresh tokens.
package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"custdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired   = errors.New("username required")
	ErrPasswordTooShort   = errors.New("password too short (min 6)")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

// MinPasswordLen is the basic password policy.
const MinPasswordLen = 6

var masterRoles = []models.Role{
	{Name: models.RoleAdministrator, Description: "full access"},
	{Name: models.RoleUser, Description: "regular user"},
}

// EnsureRoles creates the master roles if they are missing.
func EnsureRoles(db *gorm.DB) error {
	for _, r := range masterRoles {
		if err := db.Where("name = ?", r.Name).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", r.Name, err)
		}
	}
	return nil
}

// EnsureAdmin creates the administrator account unless a user with that name
// exists. It reports whether an account was created.
func EnsureAdmin(db *gorm.DB, username, password string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := CreateUser(db, username, password, models.RoleAdministrator); err != nil {
		return false, err
	}
	return true, nil
}

// Register creates a regular user after checking the password policy.
func Register(db *gorm.DB, username, password string) error {
	_, err := CreateUser(db, username, password, models.RoleUser)
	return err
}

// CreateUser hashes the password and stores a user with the named role,
// creating the role if needed.
func CreateUser(db *gorm.DB, username, password, roleName string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	if len(password) < MinPasswordLen {
		return models.User{}, ErrPasswordTooShort
	}
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return models.User{}, ErrUserExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	role := models.Role{Name: roleName}
	if err := db.Where("name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to ensure %s role: %w", roleName, err)
	}
	rid := role.ID
	user := models.User{Username: username, HashedPassword: hashed, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // lost a race after the pre-check
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	user.Role = role
	return user, nil
}

// Authenticate checks the password and returns the user with its role loaded.
func Authenticate(db *gorm.DB, username, password string) (models.User, error) {
	var user models.User
	if err := db.Preload("Role").Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword replaces the stored hash for username.
func ResetPassword(db *gorm.DB, username, password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("hashed_password", hash).Error
}

// IssueRefreshToken stores the hash of a new random token and returns the raw value.
func IssueRefreshToken(db *gorm.DB, userID uint, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashToken(token), ExpiresAt: time.Now().Add(ttl)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// RotateRefreshToken revokes raw and issues a replacement for the same user,
// returned together with that user.
func RotateRefreshToken(db *gorm.DB, raw string, ttl time.Duration) (models.User, string, error) {
	var (
		user  models.User
		fresh string
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var rt models.RefreshToken
		if err := tx.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil || !rt.Usable(time.Now()) {
			return ErrInvalidRefresh
		}
		if err := tx.Preload("Role").First(&user, rt.UserID).Error; err != nil {
			return ErrInvalidRefresh
		}
		if err := tx.Model(&rt).Update("revoked", true).Error; err != nil {
			return err
		}
		var err error
		fresh, err = IssueRefreshToken(tx, user.ID, ttl)
		return err
	})
	if err != nil {
		return models.User{}, "", err
	}
	return user, fresh, nil
}

// RevokeRefreshToken marks raw as revoked. gorm.ErrRecordNotFound is returned
// for unknown tokens.
func RevokeRefreshToken(db *gorm.DB, raw string) error {
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil {
		return err
	}
	return db.Model(&rt).Update("revoked", true).Error
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
