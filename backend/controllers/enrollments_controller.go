package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"
)

type EnrollmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentsController(db *gorm.DB, cfg *config.Config) *EnrollmentsController {
	return &EnrollmentsController{DB: db, Cfg: cfg}
}

// Enroll enrolls the calling student into a published course. A dropped
// enrollment is reactivated in place since (student, course) is unique.
func (ec *EnrollmentsController) Enroll(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	actor := actorFromCtx(c)
	if actor.Role != models.RoleStudent {
		return utils.Forbidden(c, "Only students can enroll in courses")
	}

	var course models.Course
	if err := ec.DB.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.CourseEnrollment
	err = ec.DB.Where("student_id = ? AND course_id = ?", actor.UserID, course.ID).First(&existing).Error
	if err == nil {
		if existing.Status == models.EnrollmentDropped && !existing.IsActive {
			existing.Status = models.EnrollmentEnrolled
			existing.IsActive = true
			if err := ec.DB.Save(&existing).Error; err != nil {
				return utils.InternalServerError(c, "Could not update enrollment")
			}
			return c.JSON(fiber.Map{
				"message":    "Re-enrolled in course",
				"enrollment": existing,
			})
		}
		return utils.Conflict(c, "Already enrolled in this course")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.MaxStudents != nil {
		var active int64
		ec.DB.Model(&models.CourseEnrollment{}).
			Where("course_id = ? AND is_active = ?", course.ID, true).
			Count(&active)
		if active >= int64(*course.MaxStudents) {
			return utils.BadRequest(c, "Course is full")
		}
	}

	enrollment := models.CourseEnrollment{
		StudentID:          actor.UserID,
		CourseID:           course.ID,
		Status:             models.EnrollmentEnrolled,
		IsActive:           true,
		ProgressPercentage: 0,
	}
	if err := ec.DB.Create(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create enrollment")
	}

	return utils.Created(c, enrollment)
}

// Unenroll drops the enrollment. The row is kept with status=dropped so the
// history survives; re-enrolling reactivates it.
func (ec *EnrollmentsController) Unenroll(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	actor := actorFromCtx(c)

	var enrollment models.CourseEnrollment
	if err := ec.DB.Where("student_id = ? AND course_id = ?", actor.UserID, courseID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest(c, "Not enrolled in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	enrollment.IsActive = false
	enrollment.Status = models.EnrollmentDropped
	if err := ec.DB.Save(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update enrollment")
	}

	return c.JSON(fiber.Map{"message": "Successfully unenrolled from course"})
}
