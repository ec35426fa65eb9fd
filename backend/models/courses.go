package models

import "gorm.io/gorm"

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

const (
	LessonTypeVideo      = "video"
	LessonTypeText       = "text"
	LessonTypeQuiz       = "quiz"
	LessonTypeAssignment = "assignment"
	LessonTypeLive       = "live"
)

type Category struct {
	gorm.Model
	Title       string `gorm:"unique;not null"`
	IconSrc     string
	Description string
	IsActive    bool      `gorm:"default:true"`
	Courses     []*Course `gorm:"many2many:course_categories" json:"-"`
}

type Course struct {
	gorm.Model
	Title              string `gorm:"not null"`
	Slug               string `gorm:"uniqueIndex;not null"`
	TeacherID          uint   `gorm:"index;not null"`
	Teacher            User   `json:"-"`
	Description        string
	Language           string  `gorm:"default:en"`
	Price              float64 `gorm:"default:0"`
	Currency           string  `gorm:"default:USD"`
	IsPublished        bool    `gorm:"default:false"`
	ThumbnailURL       string
	Level              string `gorm:"default:beginner"` // beginner, intermediate, advanced, expert
	DurationHours      uint   `gorm:"default:0"`
	MaxStudents        *uint
	Prerequisites      string
	LearningObjectives string
	Tags               string
	IsFree             bool        `gorm:"default:false"`
	Categories         []*Category `gorm:"many2many:course_categories"`
	Modules            []CourseModule `gorm:"constraint:OnDelete:CASCADE"`
	Enrollments        []CourseEnrollment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reviews            []CourseReview     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type CourseModule struct {
	gorm.Model
	CourseID    uint `gorm:"not null;uniqueIndex:idx_course_order"`
	Title       string
	Description string
	Order       uint     `gorm:"default:0;uniqueIndex:idx_course_order"`
	IsPublished bool     `gorm:"default:false"`
	Lessons     []Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
}

type Lesson struct {
	gorm.Model
	ModuleID        uint `gorm:"not null;uniqueIndex:idx_module_order"`
	Title           string
	Description     string
	LessonType      string `gorm:"default:video"` // video, text, quiz, assignment, live
	Content         string
	VideoURL        string
	DurationMinutes uint `gorm:"default:0"`
	Order           uint `gorm:"default:0;uniqueIndex:idx_module_order"`
	IsPublished     bool `gorm:"default:false"`
	IsFreePreview   bool `gorm:"default:false"`
}
