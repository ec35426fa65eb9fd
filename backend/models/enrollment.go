package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentEnrolled  = "enrolled"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
	EnrollmentSuspended = "suspended"
)

type CourseEnrollment struct {
	gorm.Model
	StudentID          uint    `gorm:"not null;uniqueIndex:idx_student_course"`
	CourseID           uint    `gorm:"not null;uniqueIndex:idx_student_course"`
	Status             string  `gorm:"default:enrolled"` // enrolled, completed, dropped, suspended
	IsActive           bool    `gorm:"default:true"`
	ProgressPercentage float64 `gorm:"default:0"`
	CompletedAt        *time.Time
}

type LessonProgress struct {
	gorm.Model
	StudentID            uint `gorm:"not null;uniqueIndex:idx_student_lesson"`
	LessonID             uint `gorm:"not null;uniqueIndex:idx_student_lesson"`
	IsCompleted          bool `gorm:"default:false"`
	CompletionPercentage float64 `gorm:"default:0"`
	TimeSpentMinutes     uint    `gorm:"default:0"`
	CompletedAt          *time.Time
}
