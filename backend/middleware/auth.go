package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"
)

const (
	localsUserKey = "currentUser"
	localsRoleKey = "currentRole"
)

// loadUser resolves the caller from the Authorization header and fetches the
// account with its profile and role in one pass. The role is resolved here
// once and carried in Locals so handlers never re-query it.
func loadUser(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) (*models.User, error) {
	userID, err := utils.ExtractUserIDFromToken(c, cfg)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Preload("Profile.Role").First(&user, userID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unknown user")
	}
	if !user.IsActive {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Account is disabled")
	}
	return &user, nil
}

// AuthMiddleware rejects unauthenticated requests.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := loadUser(c, db, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(localsUserKey, user)
		c.Locals(localsRoleKey, user.Profile.RoleName())
		return c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a token is present but lets
// anonymous requests through. Endpoints behind it serve public content.
func OptionalAuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") != "" {
			if user, err := loadUser(c, db, cfg); err == nil {
				c.Locals(localsUserKey, user)
				c.Locals(localsRoleKey, user.Profile.RoleName())
			}
		}
		return c.Next()
	}
}

// AdminMiddleware requires a staff account or the Admin role.
func AdminMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := loadUser(c, db, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !user.IsStaff && user.Profile.RoleName() != models.RoleAdmin {
			return utils.Forbidden(c, "Admin access required")
		}
		c.Locals(localsUserKey, user)
		c.Locals(localsRoleKey, user.Profile.RoleName())
		return c.Next()
	}
}

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(localsUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// CurrentRole returns the caller's role name or "" when anonymous/unassigned.
func CurrentRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(localsRoleKey).(string); ok {
		return role
	}
	return ""
}
