package models

import "gorm.io/gorm"

type CourseReview struct {
	gorm.Model
	CourseID    uint `gorm:"not null;uniqueIndex:idx_course_student"`
	StudentID   uint `gorm:"not null;uniqueIndex:idx_course_student"`
	Rating      int  `gorm:"check:rating>=1 AND rating<=5"`
	ReviewText  string
	IsPublished bool `gorm:"default:true"`
}

// AverageRating is the arithmetic mean of published review ratings rounded
// to one decimal place. Zero reviews yields 0.0.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0.0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return float64(int(avg*10+0.5)) / 10
}
