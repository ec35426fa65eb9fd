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

type LessonsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewLessonsController(db *gorm.DB, cfg *config.Config) *LessonsController {
	return &LessonsController{DB: db, Cfg: cfg}
}

func lessonSummary(lesson *models.Lesson) fiber.Map {
	return fiber.Map{
		"id":               lesson.ID,
		"module_id":        lesson.ModuleID,
		"title":            lesson.Title,
		"description":      lesson.Description,
		"lesson_type":      lesson.LessonType,
		"video_url":        lesson.VideoURL,
		"duration_minutes": lesson.DurationMinutes,
		"order":            lesson.Order,
		"is_published":     lesson.IsPublished,
		"is_free_preview":  lesson.IsFreePreview,
	}
}

// ListLessons returns a module's lessons ordered by index. Content is left
// out of the listing; the detail endpoint gates it behind enrollment.
func (lc *LessonsController) ListLessons(c *fiber.Ctx) error {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var module models.CourseModule
	if err := lc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := lc.DB.First(&course, module.CourseID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	actor := actorFromCtx(c)
	owner := actor.Authenticated && actor.UserID == course.TeacherID
	enrolled := actor.Authenticated && activeEnrollmentExists(lc.DB, actor.UserID, course.ID)

	if err := access.CanViewModule(actor, &course, &module, enrolled); err != nil {
		return gateError(c, err)
	}

	query := lc.DB.Where("module_id = ?", module.ID)
	if !owner {
		query = query.Where("is_published = ?", true)
	}

	var lessons []models.Lesson
	if err := query.Order("\"order\" ASC").Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if owner {
		return c.JSON(lessons)
	}

	result := make([]fiber.Map, 0, len(lessons))
	for i := range lessons {
		result = append(result, lessonSummary(&lessons[i]))
	}
	return c.JSON(result)
}

type LessonInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description"`
	LessonType      string `json:"lesson_type" validate:"omitempty,oneof=video text quiz assignment live"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	DurationMinutes uint   `json:"duration_minutes"`
	IsPublished     bool   `json:"is_published"`
	IsFreePreview   bool   `json:"is_free_preview"`
}

// CreateLesson appends a lesson to the module; the order index is assigned
// as current count + 1.
func (lc *LessonsController) CreateLesson(c *fiber.Ctx) error {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var module models.CourseModule
	if err := lc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := lc.DB.First(&course, module.CourseID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), &course); err != nil {
		return gateError(c, err)
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}
	if input.LessonType == "" {
		input.LessonType = models.LessonTypeVideo
	}

	var lessonCount int64
	lc.DB.Model(&models.Lesson{}).Where("module_id = ?", module.ID).Count(&lessonCount)

	lesson := models.Lesson{
		ModuleID:        module.ID,
		Title:           input.Title,
		Description:     input.Description,
		LessonType:      input.LessonType,
		Content:         input.Content,
		VideoURL:        input.VideoURL,
		DurationMinutes: input.DurationMinutes,
		Order:           uint(lessonCount) + 1,
		IsPublished:     input.IsPublished,
		IsFreePreview:   input.IsFreePreview,
	}

	if err := lc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Created(c, lesson)
}

func (lc *LessonsController) loadLesson(c *fiber.Ctx) (*models.Lesson, *models.CourseModule, *models.Course, error) {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, nil, nil, utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := lc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, utils.NotFound(c, "Lesson not found")
		}
		return nil, nil, nil, utils.InternalServerError(c, "Could not query database")
	}

	var module models.CourseModule
	if err := lc.DB.First(&module, lesson.ModuleID).Error; err != nil {
		return nil, nil, nil, utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := lc.DB.First(&course, module.CourseID).Error; err != nil {
		return nil, nil, nil, utils.InternalServerError(c, "Could not query database")
	}

	return &lesson, &module, &course, nil
}

// GetLesson returns lesson detail including content. Content is an
// enrollment-gated resource unless the lesson is a free preview.
func (lc *LessonsController) GetLesson(c *fiber.Ctx) error {
	lesson, module, course, errResp := lc.loadLesson(c)
	if lesson == nil {
		return errResp
	}

	actor := actorFromCtx(c)
	enrolled := actor.Authenticated && activeEnrollmentExists(lc.DB, actor.UserID, course.ID)

	if err := access.CanViewLesson(actor, course, module, lesson, enrolled); err != nil {
		return gateError(c, err)
	}

	return c.JSON(lesson)
}

func (lc *LessonsController) UpdateLesson(c *fiber.Ctx) error {
	lesson, _, course, errResp := lc.loadLesson(c)
	if lesson == nil {
		return errResp
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), course); err != nil {
		return gateError(c, err)
	}

	var input struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		LessonType      *string `json:"lesson_type"`
		Content         *string `json:"content"`
		VideoURL        *string `json:"video_url"`
		DurationMinutes *uint   `json:"duration_minutes"`
		Order           *uint   `json:"order"`
		IsPublished     *bool   `json:"is_published"`
		IsFreePreview   *bool   `json:"is_free_preview"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Description != nil {
		lesson.Description = *input.Description
	}
	if input.LessonType != nil {
		lesson.LessonType = *input.LessonType
	}
	if input.Content != nil {
		lesson.Content = *input.Content
	}
	if input.VideoURL != nil {
		lesson.VideoURL = *input.VideoURL
	}
	if input.DurationMinutes != nil {
		lesson.DurationMinutes = *input.DurationMinutes
	}
	if input.Order != nil {
		lesson.Order = *input.Order
	}
	if input.IsPublished != nil {
		lesson.IsPublished = *input.IsPublished
	}
	if input.IsFreePreview != nil {
		lesson.IsFreePreview = *input.IsFreePreview
	}

	if err := lc.DB.Save(lesson).Error; err != nil {
		return utils.Conflict(c, "Lesson order already taken")
	}

	return c.JSON(lesson)
}

// DeleteLesson removes the lesson and its progress rows.
func (lc *LessonsController) DeleteLesson(c *fiber.Ctx) error {
	lesson, _, course, errResp := lc.loadLesson(c)
	if lesson == nil {
		return errResp
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), course); err != nil {
		return gateError(c, err)
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("lesson_id = ?", lesson.ID).Delete(&models.LessonProgress{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(lesson).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete lesson")
	}

	return utils.NoContent(c)
}
