package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"fxacademy/internal/config"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

const maxHistoryPage = 100

// LessonAccess answers whether a lesson is visible to a viewer.
type LessonAccess interface {
	CanAccessLesson(ctx context.Context, v Viewer, lessonID string) (bool, error)
}

// SentMessage is a persisted message plus the DM peer to notify, empty outside DM rooms.
type SentMessage struct {
	Message *model.ChatMessage
	PeerID  string
}

// DMRoom is an opened private room from the caller's point of view.
type DMRoom struct {
	Room          string            `json:"room"`
	Peer          model.UserSummary `json:"peer"`
	CreatedAt     time.Time         `json:"created_at"`
	LastMessageAt *time.Time        `json:"last_message_at,omitempty"`
}

// ChatService owns room access rules, message persistence and DM read state.
type ChatService interface {
	// Authorize returns nil when the viewer may read and post in room.
	Authorize(ctx context.Context, v Viewer, room string) error

	// History returns a page of messages older than before (newest page when nil), oldest first.
	History(ctx context.Context, v Viewer, room string, before *time.Time, limit int) ([]model.ChatMessage, error)

	// Send validates and persists a message after checking access.
	Send(ctx context.Context, author model.UserSummary, room, body string) (*SentMessage, error)

	OpenDM(ctx context.Context, v Viewer, peerID string) (*DMRoom, error)
	Conversations(ctx context.Context, userID string) ([]model.DMConversation, error)
	MarkRead(ctx context.Context, v Viewer, room string) error
	UnreadTotal(ctx context.Context, userID string) (int, error)
}

type chatService struct {
	messages    repository.ChatRepository
	rooms       repository.PrivateRoomRepository
	users       repository.UserRepository
	lessons     LessonAccess
	historySize int
	maxBody     int
	now         func() time.Time
}

func NewChatService(
	messages repository.ChatRepository,
	rooms repository.PrivateRoomRepository,
	users repository.UserRepository,
	lessons LessonAccess,
	cfg config.ChatConfig,
) ChatService {
	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = 50
	}
	maxBody := cfg.MaxBodyLength
	if maxBody <= 0 {
		maxBody = 2000
	}
	return &chatService{
		messages:    messages,
		rooms:       rooms,
		users:       users,
		lessons:     lessons,
		historySize: historySize,
		maxBody:     maxBody,
		now:         time.Now,
	}
}

func (s *chatService) Authorize(ctx context.Context, v Viewer, room string) error {
	kind, err := model.RoomKind(room)
	if err != nil {
		return ErrUnknownRoom
	}
	switch kind {
	case "general":
		return nil
	case "lesson":
		lessonID, _ := model.ParseLessonRoom(room)
		ok, err := s.lessons.CanAccessLesson(ctx, v, lessonID)
		if err != nil {
			if errors.Is(err, ErrLessonNotFound) {
				return ErrUnknownRoom
			}
			return err
		}
		if !ok {
			return ErrRoomForbidden
		}
		return nil
	default:
		_, err := s.ensureDM(ctx, v.UserID, room)
		return err
	}
}

// ensureDM checks membership and creates the room on first use.
func (s *chatService) ensureDM(ctx context.Context, userID, room string) (*model.PrivateRoom, error) {
	a, b, ok := model.ParseDMRoom(room)
	if !ok {
		return nil, ErrUnknownRoom
	}
	if userID != a && userID != b {
		return nil, ErrRoomForbidden
	}
	pr, err := s.rooms.FindByID(ctx, room)
	if err == nil {
		return pr, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	peerID := a
	if userID == a {
		peerID = b
	}
	if _, err := s.approvedPeer(ctx, peerID); err != nil {
		return nil, err
	}
	return s.rooms.Open(ctx, &model.PrivateRoom{ID: room, UserA: a, UserB: b, CreatedAt: s.now().UTC()})
}

func (s *chatService) approvedPeer(ctx context.Context, peerID string) (*model.User, error) {
	peer, err := s.users.FindByID(ctx, peerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if peer.Status != model.UserApproved {
		return nil, ErrUserNotFound
	}
	return peer, nil
}

func (s *chatService) History(ctx context.Context, v Viewer, room string, before *time.Time, limit int) ([]model.ChatMessage, error) {
	if err := s.Authorize(ctx, v, room); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.historySize
	}
	if limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	return s.messages.History(ctx, room, before, limit)
}

func (s *chatService) Send(ctx context.Context, author model.UserSummary, room, body string) (*SentMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > s.maxBody {
		return nil, ErrMessageTooLong
	}
	if err := s.Authorize(ctx, Viewer{UserID: author.ID, Admin: author.Role == model.RoleAdmin}, room); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		ID:        uuid.NewString(),
		Room:      room,
		UserID:    author.ID,
		Body:      body,
		CreatedAt: s.now().UTC(),
		Author:    &author,
	}
	if lessonID, ok := model.ParseLessonRoom(room); ok {
		msg.LessonID = &lessonID
	}
	stored, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	out := &SentMessage{Message: stored}
	if a, b, ok := model.ParseDMRoom(room); ok {
		if err := s.rooms.Touch(ctx, room, stored.CreatedAt); err != nil {
			return nil, err
		}
		out.PeerID = a
		if author.ID == a {
			out.PeerID = b
		}
	}
	return out, nil
}

func (s *chatService) OpenDM(ctx context.Context, v Viewer, peerID string) (*DMRoom, error) {
	if peerID == "" {
		return nil, ErrIDRequired
	}
	peerID, ok := model.CanonicalID(peerID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if peerID == v.UserID {
		return nil, ErrSelfDM
	}
	peer, err := s.approvedPeer(ctx, peerID)
	if err != nil {
		return nil, err
	}
	id := model.DMRoomID(v.UserID, peerID)
	a, b, _ := model.ParseDMRoom(id)
	pr, err := s.rooms.Open(ctx, &model.PrivateRoom{ID: id, UserA: a, UserB: b, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	return &DMRoom{Room: pr.ID, Peer: peer.Summary(), CreatedAt: pr.CreatedAt, LastMessageAt: pr.LastMessageAt}, nil
}

func (s *chatService) Conversations(ctx context.Context, userID string) ([]model.DMConversation, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.rooms.Conversations(ctx, userID)
}

func (s *chatService) MarkRead(ctx context.Context, v Viewer, room string) error {
	a, b, ok := model.ParseDMRoom(room)
	if !ok {
		return ErrUnknownRoom
	}
	if v.UserID != a && v.UserID != b {
		return ErrRoomForbidden
	}
	if _, err := s.rooms.FindByID(ctx, room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	return s.rooms.MarkRead(ctx, room, v.UserID, s.now().UTC())
}

func (s *chatService) UnreadTotal(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrIDRequired
	}
	return s.rooms.UnreadTotal(ctx, userID)
}
