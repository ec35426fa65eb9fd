package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coursehub/backend/config"
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"
)

type fixture struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	require.NoError(t, utils.SeedRoles(db))

	return &fixture{
		app: fiber.New(),
		db:  db,
		cfg: &config.Config{JWTSecret: "middleware-secret"},
	}
}

func (f *fixture) createUser(t *testing.T, roleName string, isStaff bool) (*models.User, string) {
	t.Helper()

	user := models.User{
		Email:        roleName + "-user@example.com",
		PasswordHash: "irrelevant",
		IsActive:     true,
		IsStaff:      isStaff,
	}
	require.NoError(t, f.db.Create(&user).Error)

	profile := models.UserProfile{UserID: user.ID}
	if roleName != "" {
		var role models.Role
		require.NoError(t, f.db.Where("name = ?", roleName).First(&role).Error)
		profile.RoleID = &role.ID
	}
	require.NoError(t, f.db.Create(&profile).Error)

	token, err := utils.GenerateJWTToken(user.ID, f.cfg)
	require.NoError(t, err)
	return &user, token
}

func (f *fixture) get(t *testing.T, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddlewareResolvesRole(t *testing.T) {
	f := newFixture(t)
	_, token := f.createUser(t, models.RoleTeacher, false)

	var seenRole string
	f.app.Get("/guarded", middleware.AuthMiddleware(f.db, f.cfg), func(c *fiber.Ctx) error {
		seenRole = middleware.CurrentRole(c)
		require.NotNil(t, middleware.CurrentUser(c))
		return c.SendStatus(fiber.StatusOK)
	})

	status := f.get(t, "/guarded", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.RoleTeacher, seenRole)

	status = f.get(t, "/guarded", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAuthMiddlewareRejectsDisabledAccount(t *testing.T) {
	f := newFixture(t)
	user, token := f.createUser(t, models.RoleStudent, false)
	require.NoError(t, f.db.Model(user).Update("is_active", false).Error)

	f.app.Get("/guarded", middleware.AuthMiddleware(f.db, f.cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	status := f.get(t, "/guarded", token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	f := newFixture(t)
	_, token := f.createUser(t, models.RoleStudent, false)

	var seenUser *models.User
	f.app.Get("/open", middleware.OptionalAuthMiddleware(f.db, f.cfg), func(c *fiber.Ctx) error {
		seenUser = middleware.CurrentUser(c)
		return c.SendStatus(fiber.StatusOK)
	})

	// anonymous passes through with no user resolved
	status := f.get(t, "/open", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, seenUser)

	status = f.get(t, "/open", token)
	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, seenUser)

	// a bad token degrades to anonymous rather than failing the request
	seenUser = nil
	status = f.get(t, "/open", "broken-token")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, seenUser)
}

func TestAdminMiddleware(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.createUser(t, models.RoleAdmin, false)
	_, staffToken := f.createUser(t, models.RoleStudent, true)
	_, studentToken := f.createUser(t, models.RoleTeacher, false)

	f.app.Get("/admin", middleware.AdminMiddleware(f.db, f.cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	status := f.get(t, "/admin", adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	// the staff flag grants admin access regardless of role
	status = f.get(t, "/admin", staffToken)
	assert.Equal(t, fiber.StatusOK, status)

	status = f.get(t, "/admin", studentToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status = f.get(t, "/admin", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
