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

type ReviewsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewReviewsController(db *gorm.DB, cfg *config.Config) *ReviewsController {
	return &ReviewsController{DB: db, Cfg: cfg}
}

// ListReviews returns a course's published reviews with the average rating.
// Public endpoint.
func (rc *ReviewsController) ListReviews(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := rc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	page, pageSize, offset := pageParams(c)

	query := rc.DB.Model(&models.CourseReview{}).
		Where("course_id = ? AND is_published = ?", course.ID, true)

	var total int64
	query.Count(&total)

	var reviews []models.CourseReview
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&reviews).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var ratings []int
	rc.DB.Model(&models.CourseReview{}).
		Where("course_id = ? AND is_published = ?", course.ID, true).
		Pluck("rating", &ratings)

	return c.JSON(fiber.Map{
		"reviews":        reviews,
		"average_rating": models.AverageRating(ratings),
		"total":          total,
		"page":           page,
		"pageSize":       pageSize,
	})
}

type ReviewInput struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text"`
}

// CreateReview adds the caller's review. One review per (student, course);
// an active enrollment is required.
func (rc *ReviewsController) CreateReview(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := rc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	actor := actorFromCtx(c)

	if !activeEnrollmentExists(rc.DB, actor.UserID, course.ID) {
		return utils.Forbidden(c, "You must be enrolled to review this course")
	}

	var existing models.CourseReview
	if err := rc.DB.Where("student_id = ? AND course_id = ?", actor.UserID, course.ID).First(&existing).Error; err == nil {
		return utils.Conflict(c, "You have already reviewed this course")
	}

	var input ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	review := models.CourseReview{
		CourseID:    course.ID,
		StudentID:   actor.UserID,
		Rating:      input.Rating,
		ReviewText:  input.ReviewText,
		IsPublished: true,
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		return utils.InternalServerError(c, "Could not create review")
	}

	return utils.Created(c, review)
}
