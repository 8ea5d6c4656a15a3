package repository

import (
	"context"
	"time"

	"fxacademy/internal/model"
)

// ChatRepository defines data access for chat messages.
type ChatRepository interface {
	// CreateMessage persists a message; ID and CreatedAt are set by the caller.
	CreateMessage(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error)

	// History returns up to limit messages of room created before the given time (all when nil),
	// oldest first, with Author populated.
	History(ctx context.Context, room string, before *time.Time, limit int) ([]model.ChatMessage, error)
}

// PrivateRoomRepository defines data access for DM rooms and read markers.
type PrivateRoomRepository interface {
	// Open returns the room, creating it when missing.
	Open(ctx context.Context, room *model.PrivateRoom) (*model.PrivateRoom, error)

	FindByID(ctx context.Context, id string) (*model.PrivateRoom, error)

	// Touch records a message sent at the given time.
	Touch(ctx context.Context, id string, at time.Time) error

	// Conversations lists the user's rooms with peer info and unread counts, most recent first.
	Conversations(ctx context.Context, userID string) ([]model.DMConversation, error)

	// MarkRead moves the user's read marker past every message currently in the room.
	MarkRead(ctx context.Context, room, userID string, at time.Time) error

	// UnreadTotal sums unread messages across the user's DM rooms.
	UnreadTotal(ctx context.Context, userID string) (int, error)
}
