package auth_test

import (
	"net/http/httptest"
	"testing"

	"claims-tracker/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(apiKey string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: apiKey}))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("ValidKey", func(t *testing.T) {
		app := newApp("secret")

		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(auth.HeaderName, "secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("MissingKey", func(t *testing.T) {
		app := newApp("secret")

		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("WrongKey", func(t *testing.T) {
		app := newApp("secret")

		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(auth.HeaderName, "nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("EmptyKeyDisablesAuth", func(t *testing.T) {
		app := newApp("")

		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}
