package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/auth"
)

// IdentityLocalKey holds the auth.Identity of an authenticated request.
const IdentityLocalKey = "identity"

// TokenValidator checks an access token and returns the caller it was issued to.
type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// Authenticate requires a valid access token. It is read from the Authorization bearer header, or from
// the token query parameter for clients that cannot set headers (browser websockets).
func Authenticate(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing access token")
		}

		id, err := tokens.Validate(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
		}

		c.Locals(IdentityLocalKey, id)
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Authenticate.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing access token")
		}
		if !id.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

// IdentityFrom returns the caller stored by Authenticate.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(auth.Identity)
	return id, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
