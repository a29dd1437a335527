package rayid

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(seen *string) *fiber.App {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		*seen, _ = c.Locals(LocalsKey).(string)
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestNew_Generates(t *testing.T) {
	var seen string
	app := newApp(&seen)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	header := resp.Header.Get(HeaderName)
	_, parseErr := uuid.Parse(header)
	assert.NoError(t, parseErr)
	assert.Equal(t, header, seen)
}

func TestNew_KeepsIncoming(t *testing.T) {
	var seen string
	app := newApp(&seen)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderName, "upstream-id")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "upstream-id", resp.Header.Get(HeaderName))
	assert.Equal(t, "upstream-id", seen)
}
