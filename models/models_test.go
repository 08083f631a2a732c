package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCustomerDerivedFields(t *testing.T) {
	c := Customer{Active: true, Professions: []Profession{{Description: "Engineer"}, {Description: "Pilot"}}}
	assert.Equal(t, "Customer active", c.StatusMessage())
	assert.Equal(t, 2, c.NumProfessions())

	c.Active = false
	c.Professions = nil
	assert.Equal(t, "Customer inactive", c.StatusMessage())
	assert.Equal(t, 0, c.NumProfessions())
}

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Now()
	assert.True(t, RefreshToken{ExpiresAt: now.Add(time.Minute)}.Usable(now))
	assert.False(t, RefreshToken{ExpiresAt: now.Add(-time.Minute)}.Usable(now))
	assert.False(t, RefreshToken{ExpiresAt: now.Add(time.Minute), Revoked: true}.Usable(now))
}
