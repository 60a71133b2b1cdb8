package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the fiber locals key holding the ray id.
const LocalsKey = "ray_id"

// HeaderName is the response header exposing the ray id to clients.
const HeaderName = "X-Ray-ID"

// New creates the ray id middleware. Every request gets a unique id that
// handlers attach to their log entries for correlation.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Honor an incoming id from an upstream proxy, otherwise mint one.
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
