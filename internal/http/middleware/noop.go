package middleware

import "github.com/gofiber/fiber/v2"

// Noop passes the request on unchanged. It stands in for optional middleware that is switched off,
// such as rate limiting without Redis.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
