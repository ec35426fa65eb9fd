package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// EmailVerificationTTL is how long a verification token stays valid.
	EmailVerificationTTL = 24 * time.Hour
	// PasswordResetTTL is how long a reset token stays valid.
	PasswordResetTTL = time.Hour
)

// EmailVerificationToken is a one-per-user token deleted on successful
// verification. Reissuing replaces any previous token.
type EmailVerificationToken struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex;not null"`
	Token  string `gorm:"uniqueIndex;not null"`
}

func (t *EmailVerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.CreatedAt.Add(EmailVerificationTTL))
}

// PasswordResetToken is single-use. Used tokens are kept as an audit trail;
// several unexpired tokens may coexist for one user.
type PasswordResetToken struct {
	gorm.Model
	UserID uint   `gorm:"index;not null"`
	Token  string `gorm:"uniqueIndex;not null"`
	Used   bool   `gorm:"default:false"`
}

func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.CreatedAt.Add(PasswordResetTTL))
}
