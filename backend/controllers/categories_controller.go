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

type CategoriesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCategoriesController(db *gorm.DB, cfg *config.Config) *CategoriesController {
	return &CategoriesController{DB: db, Cfg: cfg}
}

// ListCategories returns active categories with their published-course counts.
func (cc *CategoriesController) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := cc.DB.Where("is_active = ?", true).Find(&categories).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(categories))
	for _, category := range categories {
		var count int64
		cc.DB.Model(&models.Course{}).
			Joins("JOIN course_categories ON course_categories.course_id = courses.id").
			Where("course_categories.category_id = ? AND courses.is_published = ?", category.ID, true).
			Count(&count)

		result = append(result, fiber.Map{
			"id":            category.ID,
			"title":         category.Title,
			"icon_src":      category.IconSrc,
			"description":   category.Description,
			"is_active":     category.IsActive,
			"courses_count": count,
			"created_at":    category.CreatedAt,
			"updated_at":    category.UpdatedAt,
		})
	}

	return c.JSON(result)
}

type CategoryInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	IconSrc     string `json:"icon_src"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (cc *CategoriesController) CreateCategory(c *fiber.Ctx) error {
	var input CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	category := models.Category{
		Title:       input.Title,
		IconSrc:     input.IconSrc,
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := cc.DB.Create(&category).Error; err != nil {
		return utils.Conflict(c, "Category already exists")
	}

	return utils.Created(c, category)
}

func (cc *CategoriesController) GetCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	var category models.Category
	if err := cc.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Category not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(category)
}

func (cc *CategoriesController) UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	var input struct {
		Title       string `json:"title"`
		IconSrc     string `json:"icon_src"`
		Description string `json:"description"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var category models.Category
	if err := cc.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Category not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != "" {
		category.Title = input.Title
	}
	if input.IconSrc != "" {
		category.IconSrc = input.IconSrc
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := cc.DB.Save(&category).Error; err != nil {
		return utils.InternalServerError(c, "Could not update category")
	}

	return c.JSON(category)
}

func (cc *CategoriesController) DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	var category models.Category
	if err := cc.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Category not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.DB.Delete(&category).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete category")
	}

	return utils.NoContent(c)
}
