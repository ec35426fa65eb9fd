package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coursehub/backend/access"
	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"
)

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

func pageParams(c *fiber.Ctx) (page, pageSize, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	pageSize, _ = strconv.Atoi(c.Query("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// courseStats returns the active-enrollment count, published-review average
// and published-review count for a course.
func (cc *CoursesController) courseStats(courseID uint) (int64, float64, int64) {
	var enrolled int64
	cc.DB.Model(&models.CourseEnrollment{}).
		Where("course_id = ? AND is_active = ?", courseID, true).
		Count(&enrolled)

	var ratings []int
	cc.DB.Model(&models.CourseReview{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Pluck("rating", &ratings)

	return enrolled, models.AverageRating(ratings), int64(len(ratings))
}

func (cc *CoursesController) courseSummary(course *models.Course) fiber.Map {
	enrolled, avgRating, reviews := cc.courseStats(course.ID)
	return fiber.Map{
		"id":             course.ID,
		"title":          course.Title,
		"slug":           course.Slug,
		"teacher_id":     course.TeacherID,
		"description":    course.Description,
		"language":       course.Language,
		"price":          course.Price,
		"currency":       course.Currency,
		"is_published":   course.IsPublished,
		"thumbnail_url":  course.ThumbnailURL,
		"level":          course.Level,
		"duration_hours": course.DurationHours,
		"is_free":        course.IsFree,
		"enrolled_count": enrolled,
		"average_rating": avgRating,
		"reviews_count":  reviews,
		"created_at":     course.CreatedAt,
	}
}

// ListCourses lists published courses with search, filters, sorting and
// pagination. Public endpoint.
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Course{}).Where("courses.is_published = ?", true)

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"LOWER(courses.title) LIKE LOWER(?) OR LOWER(courses.description) LIKE LOWER(?) OR LOWER(courses.tags) LIKE LOWER(?)",
			like, like, like,
		)
	}
	if category := c.Query("category"); category != "" {
		query = query.
			Joins("JOIN course_categories ON course_categories.course_id = courses.id").
			Joins("JOIN categories ON categories.id = course_categories.category_id").
			Where("LOWER(categories.title) = LOWER(?)", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("courses.level = ?", level)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("courses.language = ?", language)
	}
	switch c.Query("price") {
	case "free":
		query = query.Where("courses.is_free = ?", true)
	case "paid":
		query = query.Where("courses.is_free = ?", false)
	}
	if teacherID := c.Query("teacher"); teacherID != "" {
		query = query.Where("courses.teacher_id = ?", teacherID)
	}

	switch c.Query("sort", "newest") {
	case "popular":
		query = query.
			Joins("LEFT JOIN course_enrollments ON course_enrollments.course_id = courses.id AND course_enrollments.is_active = ?", true).
			Group("courses.id").
			Order("COUNT(course_enrollments.id) DESC")
	case "rating":
		query = query.
			Joins("LEFT JOIN course_reviews ON course_reviews.course_id = courses.id AND course_reviews.is_published = ?", true).
			Group("courses.id").
			Order("AVG(course_reviews.rating) DESC")
	case "price_low":
		query = query.Order("courses.price ASC")
	case "price_high":
		query = query.Order("courses.price DESC")
	default:
		query = query.Order("courses.created_at DESC")
	}

	page, pageSize, offset := pageParams(c)

	var total int64
	query.Distinct("courses.id").Count(&total)

	var courses []models.Course
	if err := query.Offset(offset).Limit(pageSize).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for i := range courses {
		result = append(result, cc.courseSummary(&courses[i]))
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

type CourseInput struct {
	Title              string  `json:"title" validate:"required,max=200"`
	Description        string  `json:"description"`
	Language           string  `json:"language" validate:"omitempty,max=5"`
	Price              float64 `json:"price" validate:"gte=0"`
	Currency           string  `json:"currency" validate:"omitempty,oneof=USD EUR GBP INR PKR"`
	IsPublished        bool    `json:"is_published"`
	ThumbnailURL       string  `json:"thumbnail_url" validate:"omitempty,url"`
	Level              string  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	DurationHours      uint    `json:"duration_hours"`
	MaxStudents        *uint   `json:"max_students"`
	Prerequisites      string  `json:"prerequisites"`
	LearningObjectives string  `json:"learning_objectives"`
	Tags               string  `json:"tags" validate:"omitempty,max=500"`
	IsFree             bool    `json:"is_free"`
	CategoryIDs        []uint  `json:"category_ids"`
}

// CreateCourse creates a course owned by the calling teacher. The slug is
// derived from the title and disambiguated with a numeric suffix.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	if err := access.CanCreateCourse(actor); err != nil {
		if errors.Is(err, access.ErrAuthRequired) {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return utils.Forbidden(c, "Only teachers can create courses")
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	slug, err := utils.UniqueCourseSlug(cc.DB, input.Title)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate slug")
	}

	course := models.Course{
		Title:              input.Title,
		Slug:               slug,
		TeacherID:          actor.UserID,
		Description:        input.Description,
		Language:           input.Language,
		Price:              input.Price,
		Currency:           input.Currency,
		IsPublished:        input.IsPublished,
		ThumbnailURL:       input.ThumbnailURL,
		Level:              input.Level,
		DurationHours:      input.DurationHours,
		MaxStudents:        input.MaxStudents,
		Prerequisites:      input.Prerequisites,
		LearningObjectives: input.LearningObjectives,
		Tags:               input.Tags,
		IsFree:             input.IsFree,
	}
	if course.Language == "" {
		course.Language = "en"
	}
	if course.Currency == "" {
		course.Currency = "USD"
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	if len(input.CategoryIDs) > 0 {
		var categories []*models.Category
		cc.DB.Find(&categories, input.CategoryIDs)
		cc.DB.Model(&course).Association("Categories").Replace(categories)
	}

	return utils.Created(c, cc.courseSummary(&course))
}

// GetCourse returns course detail by slug. Unpublished courses answer 404 to
// everyone but the owning teacher so their existence stays hidden.
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := cc.DB.Preload("Categories").Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := access.CanViewCourse(actorFromCtx(c), &course); err != nil {
		return utils.NotFound(c, "Course not found")
	}

	detail := cc.courseSummary(&course)
	detail["max_students"] = course.MaxStudents
	detail["prerequisites"] = course.Prerequisites
	detail["learning_objectives"] = course.LearningObjectives
	detail["tags"] = course.Tags
	detail["categories"] = course.Categories

	return c.JSON(fiber.Map{"course": detail})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), &course); err != nil {
		if errors.Is(err, access.ErrAuthRequired) {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return utils.Forbidden(c, "Only the course teacher can edit this course")
	}

	var input struct {
		Title              *string  `json:"title"`
		Description        *string  `json:"description"`
		Language           *string  `json:"language"`
		Price              *float64 `json:"price"`
		Currency           *string  `json:"currency"`
		IsPublished        *bool    `json:"is_published"`
		ThumbnailURL       *string  `json:"thumbnail_url"`
		Level              *string  `json:"level"`
		DurationHours      *uint    `json:"duration_hours"`
		MaxStudents        *uint    `json:"max_students"`
		Prerequisites      *string  `json:"prerequisites"`
		LearningObjectives *string  `json:"learning_objectives"`
		Tags               *string  `json:"tags"`
		IsFree             *bool    `json:"is_free"`
		CategoryIDs        []uint   `json:"category_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Language != nil {
		course.Language = *input.Language
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.Currency != nil {
		course.Currency = *input.Currency
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}
	if input.ThumbnailURL != nil {
		course.ThumbnailURL = *input.ThumbnailURL
	}
	if input.Level != nil {
		course.Level = *input.Level
	}
	if input.DurationHours != nil {
		course.DurationHours = *input.DurationHours
	}
	if input.MaxStudents != nil {
		course.MaxStudents = input.MaxStudents
	}
	if input.Prerequisites != nil {
		course.Prerequisites = *input.Prerequisites
	}
	if input.LearningObjectives != nil {
		course.LearningObjectives = *input.LearningObjectives
	}
	if input.Tags != nil {
		course.Tags = *input.Tags
	}
	if input.IsFree != nil {
		course.IsFree = *input.IsFree
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	if input.CategoryIDs != nil {
		var categories []*models.Category
		cc.DB.Find(&categories, input.CategoryIDs)
		cc.DB.Model(&course).Association("Categories").Replace(categories)
	}

	return c.JSON(fiber.Map{"course": cc.courseSummary(&course)})
}

// DeleteCourse removes the course and its whole tree: modules, lessons,
// enrollments, lesson progress and reviews.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), &course); err != nil {
		if errors.Is(err, access.ErrAuthRequired) {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return utils.Forbidden(c, "Only the course teacher can delete this course")
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&models.CourseModule{}).Where("course_id = ?", course.ID).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			var lessonIDs []uint
			if err := tx.Model(&models.Lesson{}).Where("module_id IN ?", moduleIDs).Pluck("id", &lessonIDs).Error; err != nil {
				return err
			}
			if len(lessonIDs) > 0 {
				if err := tx.Unscoped().Where("lesson_id IN ?", lessonIDs).Delete(&models.LessonProgress{}).Error; err != nil {
					return err
				}
				if err := tx.Unscoped().Where("module_id IN ?", moduleIDs).Delete(&models.Lesson{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Unscoped().Where("course_id = ?", course.ID).Delete(&models.CourseModule{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("course_id = ?", course.ID).Delete(&models.CourseEnrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("course_id = ?", course.ID).Delete(&models.CourseReview{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&course).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&course).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return utils.NoContent(c)
}

// MyEnrolledCourses lists the caller's active enrollments with progress.
func (cc *CoursesController) MyEnrolledCourses(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	page, pageSize, offset := pageParams(c)

	query := cc.DB.Model(&models.CourseEnrollment{}).
		Where("student_id = ? AND is_active = ?", actor.UserID, true)

	var total int64
	query.Count(&total)

	var enrollments []models.CourseEnrollment
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var course models.Course
		if err := cc.DB.First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}
		result = append(result, fiber.Map{
			"course":              cc.courseSummary(&course),
			"status":              enrollment.Status,
			"progress_percentage": enrollment.ProgressPercentage,
			"enrolled_at":         enrollment.CreatedAt,
			"completed_at":        enrollment.CompletedAt,
		})
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

// MyTeachingCourses lists courses owned by the calling teacher, drafts included.
func (cc *CoursesController) MyTeachingCourses(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	if actor.Role != models.RoleTeacher {
		return utils.Forbidden(c, "Only teachers can access this endpoint")
	}

	page, pageSize, offset := pageParams(c)

	query := cc.DB.Model(&models.Course{}).Where("teacher_id = ?", actor.UserID)

	var total int64
	query.Count(&total)

	var courses []models.Course
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for i := range courses {
		result = append(result, cc.courseSummary(&courses[i]))
	}

	return utils.Paginate(c, result, total, page, pageSize)
}
