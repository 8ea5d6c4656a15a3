package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fxacademy/internal/logging"
	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxFrameSize = 16 << 10

	textMessage  = 1
	closeMessage = 8
	pingMessage  = 9
)

// Conn is the subset of a websocket connection a session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Rooms is the chat use-case layer a session drives.
type Rooms interface {
	Authorize(ctx context.Context, v service.Viewer, room string) error
	History(ctx context.Context, v service.Viewer, room string, before *time.Time, limit int) ([]model.ChatMessage, error)
	Send(ctx context.Context, author model.UserSummary, room, body string) (*service.SentMessage, error)
	MarkRead(ctx context.Context, v service.Viewer, room string) error
}

// Server runs websocket sessions against a hub.
type Server struct {
	hub         *Hub
	rooms       Rooms
	presence    Presence
	log         *logging.Logger
	historySize int
	bufferSize  int
	now         func() time.Time
}

func NewServer(hub *Hub, rooms Rooms, presence Presence, log *logging.Logger, historySize, bufferSize int) *Server {
	if historySize <= 0 {
		historySize = 50
	}
	return &Server{
		hub:         hub,
		rooms:       rooms,
		presence:    presence,
		log:         log,
		historySize: historySize,
		bufferSize:  bufferSize,
		now:         time.Now,
	}
}

// Serve runs one connection until the peer goes away or the hub drops it.
func (s *Server) Serve(ctx context.Context, conn Conn, user model.UserSummary, admin bool) {
	c := NewClient(user, admin, s.bufferSize)
	s.hub.Register(c)

	first, err := s.presence.Connect(ctx, user.ID)
	if err != nil {
		s.log.Error("chat_presence_failed", err, map[string]any{"component": "chat", "user_id": user.ID})
	}
	if first {
		s.publish(ctx, Delivery{Broadcast: true}, EventUserOnline, userPayload{UserID: user.ID})
	}
	if online, err := s.presence.Online(ctx); err == nil {
		s.reply(c, EventOnlineUsers, onlinePayload{UserIDs: online})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(conn, c)
	}()

	s.readLoop(ctx, conn, c)

	s.hub.Unregister(c)
	<-done

	bg := context.WithoutCancel(ctx)
	last, err := s.presence.Disconnect(bg, user.ID)
	if err != nil {
		s.log.Error("chat_presence_failed", err, map[string]any{"component": "chat", "user_id": user.ID})
	}
	if last {
		s.publish(bg, Delivery{Broadcast: true}, EventUserOffline, userPayload{UserID: user.ID})
	}
}

func (s *Server) readLoop(ctx context.Context, conn Conn, c *Client) {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(s.now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(s.now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.reply(c, EventError, errorPayload{Message: "malformed frame"})
			continue
		}
		s.handle(ctx, c, f)
	}
}

// writePump owns all writes to conn. It exits when the outbound channel closes or a write fails.
func (s *Server) writePump(conn Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Outbound():
			_ = conn.SetWriteDeadline(s.now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(closeMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(textMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(s.now().Add(writeWait))
			if err := conn.WriteMessage(pingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handle(ctx context.Context, c *Client, f Frame) {
	viewer := service.Viewer{UserID: c.User.ID, Admin: c.Admin}

	switch f.Event {
	case EventJoinRoom:
		var p roomPayload
		if !s.decode(c, f, &p) {
			return
		}
		if err := s.rooms.Authorize(ctx, viewer, p.Room); err != nil {
			s.fail(c, f.Event, err)
			return
		}
		history, err := s.rooms.History(ctx, viewer, p.Room, nil, s.historySize)
		if err != nil {
			s.fail(c, f.Event, err)
			return
		}
		s.hub.Join(c, p.Room)
		s.reply(c, EventMessageHistory, historyPayload{Room: p.Room, Messages: history})

	case EventLeaveRoom:
		var p roomPayload
		if !s.decode(c, f, &p) {
			return
		}
		s.hub.Leave(c, p.Room)
		s.reply(c, EventRoomLeft, roomPayload{Room: p.Room})

	case EventSendMessage:
		var p sendPayload
		if !s.decode(c, f, &p) {
			return
		}
		sent, err := s.rooms.Send(ctx, c.User, p.Room, p.Body)
		if err != nil {
			s.fail(c, f.Event, err)
			return
		}
		s.hub.metrics.message()
		s.publish(ctx, Delivery{Room: p.Room}, EventNewMessage, messagePayload{Message: sent.Message})
		if sent.PeerID != "" {
			s.publish(ctx, Delivery{UserID: sent.PeerID, SkipRoom: p.Room}, EventDMNotification,
				dmNotificationPayload{Room: p.Room, From: c.User, Message: sent.Message})
		}

	case EventTyping:
		var p roomPayload
		if !s.decode(c, f, &p) {
			return
		}
		if !s.hub.Joined(c, p.Room) {
			s.fail(c, f.Event, service.ErrRoomForbidden)
			return
		}
		s.publish(ctx, Delivery{Room: p.Room, ExceptUser: c.User.ID}, EventTyping, typingPayload{Room: p.Room, UserID: c.User.ID})

	case EventMarkRead:
		var p roomPayload
		if !s.decode(c, f, &p) {
			return
		}
		if err := s.rooms.MarkRead(ctx, viewer, p.Room); err != nil {
			s.fail(c, f.Event, err)
			return
		}
		s.reply(c, EventRead, readPayload{Room: p.Room, ReadAt: s.now().UTC()})

	default:
		s.reply(c, EventError, errorPayload{Event: f.Event, Message: "unknown event"})
	}
}

func (s *Server) decode(c *Client, f Frame, dst any) bool {
	if len(f.Data) == 0 || json.Unmarshal(f.Data, dst) != nil {
		s.reply(c, EventError, errorPayload{Event: f.Event, Message: "malformed payload"})
		return false
	}
	return true
}

// clientErrors may be shown to the user as they are.
var clientErrors = []error{
	service.ErrUnknownRoom,
	service.ErrRoomForbidden,
	service.ErrRoomNotFound,
	service.ErrEmptyMessage,
	service.ErrMessageTooLong,
	service.ErrUserNotFound,
	service.ErrLessonNotFound,
}

func (s *Server) fail(c *Client, event string, err error) {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			s.reply(c, EventError, errorPayload{Event: event, Message: known.Error()})
			return
		}
	}
	s.log.Error("chat_event_failed", err, map[string]any{"component": "chat", "event": event, "user_id": c.User.ID})
	s.reply(c, EventError, errorPayload{Event: event, Message: "internal error"})
}

func (s *Server) reply(c *Client, event string, data any) {
	payload, err := encode(event, data)
	if err != nil {
		s.log.Error("chat_encode_failed", err, map[string]any{"component": "chat", "event": event})
		return
	}
	s.hub.SendTo(c, payload)
}

func (s *Server) publish(ctx context.Context, d Delivery, event string, data any) {
	payload, err := encode(event, data)
	if err != nil {
		s.log.Error("chat_encode_failed", err, map[string]any{"component": "chat", "event": event})
		return
	}
	d.Payload = payload
	if err := s.hub.Publish(ctx, d); err != nil {
		s.log.Error("chat_publish_failed", err, map[string]any{"component": "chat", "event": event})
	}
}
