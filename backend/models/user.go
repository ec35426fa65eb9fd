package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsActive     bool   `gorm:"default:true"`
	IsStaff      bool   `gorm:"default:false"`
	LastLogin    *time.Time
	Profile      UserProfile
}

type Role struct {
	gorm.Model
	Name        string `gorm:"unique;not null"` // Admin, Teacher, Student
	Description string
	Active      bool `gorm:"default:true"`
}

type UserProfile struct {
	gorm.Model
	UserID             uint `gorm:"uniqueIndex;not null"`
	FirstName          string
	LastName           string
	Avatar             string
	PhoneNumber        string
	Country            string
	LanguagePreference string `gorm:"default:en"`
	Timezone           string `gorm:"default:UTC"`
	RoleID             *uint
	Role               *Role
}

// RoleName returns the profile's role name or "" when no role is assigned.
func (p *UserProfile) RoleName() string {
	if p.Role == nil {
		return ""
	}
	return p.Role.Name
}
