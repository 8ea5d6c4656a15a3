package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fxacademy/internal/auth"
	"fxacademy/internal/http/middleware"
	"fxacademy/internal/service"
)

// identity returns the authenticated caller; routes behind Authenticate always have one.
func identity(c *fiber.Ctx) auth.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func viewer(c *fiber.Ctx) service.Viewer {
	id := identity(c)
	return service.Viewer{UserID: id.UserID, Admin: id.IsAdmin()}
}

// uuidParam returns the named route parameter in canonical lowercase form, or writes INVALID_ID
// and ok=false.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id.String(), true
}

// pagination parses limit and offset, writing INVALID_LIMIT or INVALID_OFFSET when malformed.
// Bounds are left to the service.
func pagination(c *fiber.Ctx, defaultLimit int) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 0 {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// listResponse wraps collections so the response can grow fields without breaking clients.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Data: items}
}
