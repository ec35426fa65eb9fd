package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coursehub/backend/access"
	"coursehub/backend/config"
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"
)

// actorFromCtx builds the gate's view of the caller from what the auth
// middleware resolved.
func actorFromCtx(c *fiber.Ctx) access.Actor {
	user := middleware.CurrentUser(c)
	if user == nil {
		return access.Actor{}
	}
	return access.Actor{
		Authenticated: true,
		UserID:        user.ID,
		Role:          middleware.CurrentRole(c),
		IsStaff:       user.IsStaff,
	}
}

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"is_active":  user.IsActive,
		"created_at": user.CreatedAt,
		"profile": fiber.Map{
			"first_name":          user.Profile.FirstName,
			"last_name":           user.Profile.LastName,
			"avatar":              user.Profile.Avatar,
			"phone_number":        user.Profile.PhoneNumber,
			"country":             user.Profile.Country,
			"language_preference": user.Profile.LanguagePreference,
			"timezone":            user.Profile.Timezone,
			"role_name":           user.Profile.RoleName(),
		},
	})
}

type UpdateProfileInput struct {
	FirstName          *string `json:"first_name" validate:"omitempty,max=50"`
	LastName           *string `json:"last_name" validate:"omitempty,max=50"`
	Avatar             *string `json:"avatar" validate:"omitempty,url"`
	PhoneNumber        *string `json:"phone_number" validate:"omitempty,max=20"`
	Country            *string `json:"country" validate:"omitempty,max=100"`
	LanguagePreference *string `json:"language_preference" validate:"omitempty,max=10"`
	Timezone           *string `json:"timezone" validate:"omitempty,max=50"`
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var profile models.UserProfile
	if err := uc.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return utils.NotFound(c, "Profile not found")
	}

	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.Avatar != nil {
		profile.Avatar = *input.Avatar
	}
	if input.PhoneNumber != nil {
		profile.PhoneNumber = *input.PhoneNumber
	}
	if input.Country != nil {
		profile.Country = *input.Country
	}
	if input.LanguagePreference != nil {
		profile.LanguagePreference = *input.LanguagePreference
	}
	if input.Timezone != nil {
		profile.Timezone = *input.Timezone
	}

	if err := uc.DB.Save(&profile).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
	})
}
