package handler

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/chat"
	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

const (
	chatUserLocalKey  = "chat_user"
	chatAdminLocalKey = "chat_admin"
)

// ChatUpgrade admits approved users to the chat socket. It runs after Authenticate and loads the
// caller's profile so messages carry the author's current name.
func ChatUpgrade(users service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		u, err := users.Me(c.UserContext(), identity(c).UserID)
		if err != nil {
			return respondError(c, err)
		}
		if u.Status != model.UserApproved {
			return writeError(c, fiber.StatusForbidden, "PENDING_APPROVAL", service.ErrPendingApproval.Error())
		}
		c.Locals(chatUserLocalKey, u.Summary())
		c.Locals(chatAdminLocalKey, u.IsAdmin())
		return c.Next()
	}
}

// ChatSocket runs one chat session per connection until the client leaves or ctx ends.
//
// @Summary Chat websocket
// @Description Frames are JSON {"event", "data"}. Authenticate with ?token=<jwt>.
// @Tags chat
// @Param token query string true "Access token"
// @Success 101
// @Router /api/chat/ws [get]
func ChatSocket(ctx context.Context, server *chat.Server) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, _ := conn.Locals(chatUserLocalKey).(model.UserSummary)
		admin, _ := conn.Locals(chatAdminLocalKey).(bool)
		server.Serve(ctx, conn, user, admin)
	})
}
