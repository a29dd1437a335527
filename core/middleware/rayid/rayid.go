package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderName is the header carrying the request id.
	HeaderName = "X-Ray-ID"
	// LocalsKey is the fiber locals key holding the request id.
	LocalsKey = "ray_id"
)

// New returns a middleware assigning every request a ray id.
// An id supplied by the client is kept so traces can span services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
