package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type historyResponse struct {
	Room     string              `json:"room"`
	Messages []model.ChatMessage `json:"messages"`
}

// ChatHistory returns a page of room messages, oldest first.
//
// @Summary Room history
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param room path string true "Room id (general, lesson:<id>, dm:<a>:<b>)"
// @Param before query string false "RFC3339 timestamp; messages strictly older are returned"
// @Param limit query int false "Page size"
// @Success 200 {object} historyResponse
// @Failure 403 {object} errorPayload
// @Router /api/chat/rooms/{room}/messages [get]
func ChatHistory(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var before *time.Time
		if raw := c.Query("before"); raw != "" {
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BEFORE", "before must be an RFC3339 timestamp")
			}
			before = &t
		}
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil || limit < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		room := c.Params("room")
		msgs, err := svc.History(c.UserContext(), viewer(c), room, before, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(historyResponse{Room: room, Messages: list(msgs).Data})
	}
}

// ListConversations returns the caller's DM rooms with unread counts.
//
// @Summary List DM conversations
// @Tags dm
// @Produce json
// @Security BearerAuth
// @Success 200 {object} listResponse[model.DMConversation]
// @Router /api/dm [get]
func ListConversations(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Conversations(c.UserContext(), identity(c).UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list(items))
	}
}

// OpenConversation opens, creating when missing, the DM room with another user.
//
// @Summary Open DM
// @Tags dm
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Peer user ID"
// @Success 200 {object} service.DMRoom
// @Failure 404 {object} errorPayload
// @Router /api/dm/{userId} [post]
func OpenConversation(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		peer, ok := uuidParam(c, "userId")
		if !ok {
			return nil
		}
		room, err := svc.OpenDM(c.UserContext(), viewer(c), peer)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(room)
	}
}

// MarkConversationRead moves the caller's read marker to now.
//
// @Summary Mark DM read
// @Tags dm
// @Security BearerAuth
// @Param room path string true "DM room id"
// @Success 204
// @Router /api/dm/{room}/read [post]
func MarkConversationRead(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.MarkRead(c.UserContext(), viewer(c), c.Params("room")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UnreadConversations returns the unread total across the caller's DMs.
//
// @Summary Unread DM total
// @Tags dm
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /api/dm/unread [get]
func UnreadConversations(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadTotal(c.UserContext(), identity(c).UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"unread": n})
	}
}
