package utils_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/backend/config"
	"coursehub/backend/utils"
)

func extractVia(t *testing.T, cfg *config.Config, header string) (uint, int) {
	t.Helper()

	var gotID uint
	var gotErr error

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		gotID, gotErr = utils.ExtractUserIDFromToken(c, cfg)
		if gotErr != nil {
			return gotErr
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return gotID, resp.StatusCode
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "roundtrip-secret"}

	token, err := utils.GenerateJWTToken(42, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, status := extractVia(t, cfg, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 42, userID)
}

func TestJWTMissingHeader(t *testing.T) {
	cfg := &config.Config{JWTSecret: "roundtrip-secret"}
	_, status := extractVia(t, cfg, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTMalformedToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "roundtrip-secret"}
	_, status := extractVia(t, cfg, "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := utils.GenerateJWTToken(42, &config.Config{JWTSecret: "secret-a"})
	require.NoError(t, err)

	_, status := extractVia(t, &config.Config{JWTSecret: "secret-b"}, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
