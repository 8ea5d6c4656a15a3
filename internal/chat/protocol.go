// Package chat runs the realtime side of the platform: websocket sessions, room fan-out across
// instances and online presence.
package chat

import (
	"encoding/json"
	"time"

	"fxacademy/internal/model"
)

// Client events.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventMarkRead    = "mark_read"
)

// Server events.
const (
	EventMessageHistory = "message_history"
	EventNewMessage     = "new_message"
	EventDMNotification = "dm_notification"
	EventOnlineUsers    = "online_users"
	EventUserOnline     = "user_online"
	EventUserOffline    = "user_offline"
	EventRoomLeft       = "room_left"
	EventRead           = "read"
	EventError          = "error"
)

// Frame is the JSON envelope of every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type sendPayload struct {
	Room string `json:"room"`
	Body string `json:"body"`
}

type historyPayload struct {
	Room     string              `json:"room"`
	Messages []model.ChatMessage `json:"messages"`
}

type messagePayload struct {
	Message *model.ChatMessage `json:"message"`
}

type dmNotificationPayload struct {
	Room    string             `json:"room"`
	From    model.UserSummary  `json:"from"`
	Message *model.ChatMessage `json:"message"`
}

type typingPayload struct {
	Room   string `json:"room"`
	UserID string `json:"user_id"`
}

type userPayload struct {
	UserID string `json:"user_id"`
}

type onlinePayload struct {
	UserIDs []string `json:"user_ids"`
}

type readPayload struct {
	Room   string    `json:"room"`
	ReadAt time.Time `json:"read_at"`
}

type errorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// encode renders a server frame.
func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
