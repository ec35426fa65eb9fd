package controllers

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

type LessonProgressInput struct {
	CompletionPercentage *float64 `json:"completion_percentage" validate:"omitempty,gte=0,lte=100"`
	TimeSpentMinutes     uint     `json:"time_spent_minutes"`
	IsCompleted          bool     `json:"is_completed"`
}

// UpdateLessonProgress upserts the caller's progress on a lesson and then
// recomputes the enrollment's aggregate from the live lesson count.
//
// The completion percentage is taken as supplied (it may go down); time spent
// only accumulates; the completed flag is idempotent and one-way.
func (pc *ProgressController) UpdateLessonProgress(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := pc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var module models.CourseModule
	if err := pc.DB.First(&module, lesson.ModuleID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	actor := actorFromCtx(c)

	var enrollment models.CourseEnrollment
	if err := pc.DB.Where("student_id = ? AND course_id = ? AND is_active = ?",
		actor.UserID, module.CourseID, true).First(&enrollment).Error; err != nil {
		return utils.Forbidden(c, "You must be enrolled to access this lesson")
	}

	var input LessonProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var progress models.LessonProgress
	err = pc.DB.Where("student_id = ? AND lesson_id = ?", actor.UserID, lesson.ID).First(&progress).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.InternalServerError(c, "Could not query database")
		}
		progress = models.LessonProgress{
			StudentID: actor.UserID,
			LessonID:  lesson.ID,
		}
	}

	if input.CompletionPercentage != nil {
		progress.CompletionPercentage = *input.CompletionPercentage
	}
	progress.TimeSpentMinutes += input.TimeSpentMinutes

	if input.IsCompleted && !progress.IsCompleted {
		now := time.Now()
		progress.IsCompleted = true
		progress.CompletedAt = &now
	}

	if err := pc.DB.Save(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	pc.recomputeEnrollmentProgress(&enrollment, module.CourseID, actor.UserID)

	return c.JSON(fiber.Map{
		"progress":   progress,
		"enrollment": enrollment,
	})
}

// recomputeEnrollmentProgress derives the course-level percentage from the
// lessons that currently exist; there is no snapshot, so adding or removing
// lessons shifts the value retroactively. At exactly 100 the enrollment
// transitions to completed and never transitions back on its own.
func (pc *ProgressController) recomputeEnrollmentProgress(enrollment *models.CourseEnrollment, courseID, studentID uint) {
	var totalLessons int64
	pc.DB.Model(&models.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Count(&totalLessons)

	if totalLessons == 0 {
		return
	}

	var completedLessons int64
	pc.DB.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ? AND lesson_progresses.student_id = ? AND lesson_progresses.is_completed = ?",
			courseID, studentID, true).
		Count(&completedLessons)

	enrollment.ProgressPercentage = math.Round(float64(completedLessons)/float64(totalLessons)*100*100) / 100
	if enrollment.ProgressPercentage == 100 && enrollment.Status != models.EnrollmentCompleted {
		now := time.Now()
		enrollment.Status = models.EnrollmentCompleted
		enrollment.CompletedAt = &now
	}

	pc.DB.Save(enrollment)
}
