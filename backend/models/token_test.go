package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"coursehub/backend/models"
)

func TestEmailVerificationTokenExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := models.EmailVerificationToken{
		Model: gorm.Model{CreatedAt: issued},
	}

	assert.False(t, token.IsExpired(issued))
	assert.False(t, token.IsExpired(issued.Add(23*time.Hour+59*time.Minute)))
	// the boundary itself is still valid
	assert.False(t, token.IsExpired(issued.Add(24*time.Hour)))
	assert.True(t, token.IsExpired(issued.Add(24*time.Hour+time.Minute)))
}

func TestPasswordResetTokenExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := models.PasswordResetToken{
		Model: gorm.Model{CreatedAt: issued},
	}

	assert.False(t, token.IsExpired(issued.Add(59*time.Minute)))
	assert.False(t, token.IsExpired(issued.Add(time.Hour)))
	assert.True(t, token.IsExpired(issued.Add(time.Hour+time.Minute)))
}
