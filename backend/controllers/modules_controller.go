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

type ModulesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewModulesController(db *gorm.DB, cfg *config.Config) *ModulesController {
	return &ModulesController{DB: db, Cfg: cfg}
}

// activeEnrollmentExists reports whether the student holds an active
// enrollment in the course.
func activeEnrollmentExists(db *gorm.DB, studentID, courseID uint) bool {
	var count int64
	db.Model(&models.CourseEnrollment{}).
		Where("student_id = ? AND course_id = ? AND is_active = ?", studentID, courseID, true).
		Count(&count)
	return count > 0
}

func gateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, access.ErrAuthRequired) {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Forbidden(c, "Access denied")
}

// ListModules returns a course's modules ordered by their index. The owning
// teacher sees drafts; everyone else sees published modules only.
func (mc *ModulesController) ListModules(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := mc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	actor := actorFromCtx(c)
	owner := actor.Authenticated && actor.UserID == course.TeacherID
	enrolled := actor.Authenticated && activeEnrollmentExists(mc.DB, actor.UserID, course.ID)

	if !owner && !course.IsPublished && !enrolled {
		if !actor.Authenticated {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return utils.Forbidden(c, "Access denied")
	}

	query := mc.DB.Where("course_id = ?", course.ID)
	if !owner {
		query = query.Where("is_published = ?", true)
	}

	var modules []models.CourseModule
	if err := query.Order("\"order\" ASC").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(modules)
}

type ModuleInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
}

// CreateModule appends a module to the course; the order index is assigned
// as current count + 1.
func (mc *ModulesController) CreateModule(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := mc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), &course); err != nil {
		return gateError(c, err)
	}

	var input ModuleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var moduleCount int64
	mc.DB.Model(&models.CourseModule{}).Where("course_id = ?", course.ID).Count(&moduleCount)

	module := models.CourseModule{
		CourseID:    course.ID,
		Title:       input.Title,
		Description: input.Description,
		Order:       uint(moduleCount) + 1,
		IsPublished: input.IsPublished,
	}

	if err := mc.DB.Create(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not create module")
	}

	return utils.Created(c, module)
}

func (mc *ModulesController) loadModule(c *fiber.Ctx) (*models.CourseModule, *models.Course, error) {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, nil, utils.BadRequest(c, "Invalid module ID")
	}

	var module models.CourseModule
	if err := mc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.NotFound(c, "Module not found")
		}
		return nil, nil, utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := mc.DB.First(&course, module.CourseID).Error; err != nil {
		return nil, nil, utils.InternalServerError(c, "Could not query database")
	}

	return &module, &course, nil
}

func (mc *ModulesController) GetModule(c *fiber.Ctx) error {
	module, course, errResp := mc.loadModule(c)
	if module == nil {
		return errResp
	}

	actor := actorFromCtx(c)
	enrolled := actor.Authenticated && activeEnrollmentExists(mc.DB, actor.UserID, course.ID)

	if err := access.CanViewModule(actor, course, module, enrolled); err != nil {
		return gateError(c, err)
	}

	return c.JSON(module)
}

func (mc *ModulesController) UpdateModule(c *fiber.Ctx) error {
	module, course, errResp := mc.loadModule(c)
	if module == nil {
		return errResp
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), course); err != nil {
		return gateError(c, err)
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Order       *uint   `json:"order"`
		IsPublished *bool   `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		module.Title = *input.Title
	}
	if input.Description != nil {
		module.Description = *input.Description
	}
	if input.Order != nil {
		module.Order = *input.Order
	}
	if input.IsPublished != nil {
		module.IsPublished = *input.IsPublished
	}

	if err := mc.DB.Save(module).Error; err != nil {
		return utils.Conflict(c, "Module order already taken")
	}

	return c.JSON(module)
}

// DeleteModule removes the module with its lessons and their progress rows.
func (mc *ModulesController) DeleteModule(c *fiber.Ctx) error {
	module, course, errResp := mc.loadModule(c)
	if module == nil {
		return errResp
	}

	if err := access.CanModifyCourseTree(actorFromCtx(c), course); err != nil {
		return gateError(c, err)
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		if err := tx.Model(&models.Lesson{}).Where("module_id = ?", module.ID).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if len(lessonIDs) > 0 {
			if err := tx.Unscoped().Where("lesson_id IN ?", lessonIDs).Delete(&models.LessonProgress{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("module_id = ?", module.ID).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(module).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete module")
	}

	return utils.NoContent(c)
}
