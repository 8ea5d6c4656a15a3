package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoomGeneral      = "general"
	lessonRoomPrefix = "lesson:"
	dmRoomPrefix     = "dm:"
)

type ChatMessage struct {
	ID        string       `json:"id"`
	Room      string       `json:"room"`
	UserID    string       `json:"user_id"`
	LessonID  *string      `json:"lesson_id,omitempty"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`
}

// PrivateRoom records a DM conversation. UserA sorts before UserB.
type PrivateRoom struct {
	ID            string     `json:"id"`
	UserA         string     `json:"user_a"`
	UserB         string     `json:"user_b"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Peer returns the member of the room that is not userID.
func (r *PrivateRoom) Peer(userID string) string {
	if r.UserA == userID {
		return r.UserB
	}
	return r.UserA
}

// DMConversation is a private room as seen by one of its members.
type DMConversation struct {
	Room          string      `json:"room"`
	Peer          UserSummary `json:"peer"`
	LastMessageAt *time.Time  `json:"last_message_at,omitempty"`
	Unread        int         `json:"unread"`
}

// CanonicalID returns id in lowercase hyphenated form. Braced, urn and uppercase spellings of the
// same UUID all map to one value.
func CanonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func isCanonicalID(id string) bool {
	c, ok := CanonicalID(id)
	return ok && c == id
}

// DMRoomID derives the room id for a pair of users; argument order does not matter.
// Both ids must already be canonical for the result to parse.
func DMRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return dmRoomPrefix + a + ":" + b
}

// ParseDMRoom splits a DM room id into its sorted members.
func ParseDMRoom(room string) (a, b string, ok bool) {
	rest, found := strings.CutPrefix(room, dmRoomPrefix)
	if !found {
		return "", "", false
	}
	a, b, found = strings.Cut(rest, ":")
	if !found || !isCanonicalID(a) || !isCanonicalID(b) || a >= b {
		return "", "", false
	}
	return a, b, true
}

func IsDMRoom(room string) bool {
	_, _, ok := ParseDMRoom(room)
	return ok
}

func LessonRoomID(lessonID string) string {
	return lessonRoomPrefix + lessonID
}

// ParseLessonRoom returns the lesson id of a lesson room.
func ParseLessonRoom(room string) (string, bool) {
	id, ok := strings.CutPrefix(room, lessonRoomPrefix)
	return id, ok && isCanonicalID(id)
}

// RoomKind classifies a room id; unknown ids return an error.
func RoomKind(room string) (string, error) {
	switch {
	case room == RoomGeneral:
		return "general", nil
	case IsDMRoom(room):
		return "dm", nil
	default:
		if _, ok := ParseLessonRoom(room); ok {
			return "lesson", nil
		}
	}
	return "", fmt.Errorf("unknown room %q", room)
}
