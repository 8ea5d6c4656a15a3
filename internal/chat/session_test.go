package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/logging"
	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

// logSink is a goroutine-safe log destination.
type logSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

type fakeConn struct {
	in        chan []byte
	out       chan Frame
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), out: make(chan Frame, 64), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-f.in:
		return textMessage, b, nil
	case <-f.closed:
		return 0, nil, io.EOF
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("closed")
	default:
	}
	if messageType != textMessage {
		return nil
	}
	var fr Frame
	if err := json.Unmarshal(data, &fr); err != nil {
		return err
	}
	f.out <- fr
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) Close() error                      { f.closeOnce.Do(func() { close(f.closed) }); return nil }
func (f *fakeConn) send(t *testing.T, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	b, err := json.Marshal(Frame{Event: event, Data: raw})
	require.NoError(t, err)
	f.in <- b
}

// expect returns the next frame with the given event, skipping others.
func (f *fakeConn) expect(t *testing.T, event string) Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case fr := <-f.out:
			if fr.Event == event {
				return fr
			}
		case <-timeout:
			t.Fatalf("no %s frame", event)
		}
	}
}

type mockRooms struct{ mock.Mock }

func (m *mockRooms) Authorize(ctx context.Context, v service.Viewer, room string) error {
	return m.Called(v, room).Error(0)
}

func (m *mockRooms) History(ctx context.Context, v service.Viewer, room string, before *time.Time, limit int) ([]model.ChatMessage, error) {
	args := m.Called(v, room, limit)
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (m *mockRooms) Send(ctx context.Context, author model.UserSummary, room, body string) (*service.SentMessage, error) {
	args := m.Called(author.ID, room, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SentMessage), args.Error(1)
}

func (m *mockRooms) MarkRead(ctx context.Context, v service.Viewer, room string) error {
	return m.Called(v, room).Error(0)
}

type session struct {
	conn *fakeConn
	done chan struct{}
}

func start(t *testing.T, srv *Server, user model.UserSummary) *session {
	t.Helper()
	s := &session{conn: newFakeConn(), done: make(chan struct{})}
	go func() {
		defer close(s.done)
		srv.Serve(context.Background(), s.conn, user, false)
	}()
	s.conn.expect(t, EventOnlineUsers)
	return s
}

func (s *session) stop(t *testing.T) {
	t.Helper()
	_ = s.conn.Close()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}
}

func newTestServer(t *testing.T, rooms Rooms) (*Server, *Hub) {
	t.Helper()
	h, _ := newTestHub(t)
	var sink logSink
	return NewServer(h, rooms, NewLocalPresence(), logging.New(&sink, time.UTC), 50, 32), h
}

var (
	alice = model.UserSummary{ID: "a", Name: "Alice", Role: model.RoleStudent}
	bob   = model.UserSummary{ID: "b", Name: "Bob", Role: model.RoleStudent}
)

func TestServer_JoinAndBroadcast(t *testing.T) {
	rooms := new(mockRooms)
	srv, _ := newTestServer(t, rooms)

	rooms.On("Authorize", mock.Anything, "general").Return(nil)
	rooms.On("History", mock.Anything, "general", 50).Return([]model.ChatMessage{{ID: "old"}}, nil)
	msg := &model.ChatMessage{ID: "m1", Room: "general", Body: "gm", Author: &alice}
	rooms.On("Send", "a", "general", "gm").Return(&service.SentMessage{Message: msg}, nil)

	a := start(t, srv, alice)
	b := start(t, srv, bob)
	a.conn.expect(t, EventUserOnline)

	a.conn.send(t, EventJoinRoom, roomPayload{Room: "general"})
	var hist historyPayload
	require.NoError(t, json.Unmarshal(a.conn.expect(t, EventMessageHistory).Data, &hist))
	assert.Equal(t, "general", hist.Room)
	require.Len(t, hist.Messages, 1)

	b.conn.send(t, EventJoinRoom, roomPayload{Room: "general"})
	b.conn.expect(t, EventMessageHistory)

	a.conn.send(t, EventSendMessage, sendPayload{Room: "general", Body: "gm"})
	for _, s := range []*session{a, b} {
		var p messagePayload
		require.NoError(t, json.Unmarshal(s.conn.expect(t, EventNewMessage).Data, &p))
		assert.Equal(t, "m1", p.Message.ID)
	}

	b.conn.send(t, EventTyping, roomPayload{Room: "general"})
	var typing typingPayload
	require.NoError(t, json.Unmarshal(a.conn.expect(t, EventTyping).Data, &typing))
	assert.Equal(t, "b", typing.UserID)

	b.stop(t)
	var off userPayload
	require.NoError(t, json.Unmarshal(a.conn.expect(t, EventUserOffline).Data, &off))
	assert.Equal(t, "b", off.UserID)
	a.stop(t)
}

func TestServer_DMNotification(t *testing.T) {
	rooms := new(mockRooms)
	srv, _ := newTestServer(t, rooms)
	dm := model.DMRoomID("a", "b")

	msg := &model.ChatMessage{ID: "m2", Room: dm, Body: "psst", Author: &alice}
	rooms.On("Send", "a", dm, "psst").Return(&service.SentMessage{Message: msg, PeerID: "b"}, nil)

	a := start(t, srv, alice)
	b := start(t, srv, bob)

	a.conn.send(t, EventSendMessage, sendPayload{Room: dm, Body: "psst"})

	var n dmNotificationPayload
	require.NoError(t, json.Unmarshal(b.conn.expect(t, EventDMNotification).Data, &n))
	assert.Equal(t, dm, n.Room)
	assert.Equal(t, "Alice", n.From.Name)
	assert.Equal(t, "m2", n.Message.ID)

	a.stop(t)
	b.stop(t)
}

func TestServer_Errors(t *testing.T) {
	rooms := new(mockRooms)
	srv, _ := newTestServer(t, rooms)
	rooms.On("Authorize", mock.Anything, "dm:x:y").Return(service.ErrRoomForbidden)
	rooms.On("Send", "a", "general", "").Return(nil, service.ErrEmptyMessage)
	rooms.On("MarkRead", mock.Anything, "dm:a:b").Return(errors.New("db exploded"))

	a := start(t, srv, alice)

	errorOf := func() errorPayload {
		var p errorPayload
		require.NoError(t, json.Unmarshal(a.conn.expect(t, EventError).Data, &p))
		return p
	}

	a.conn.send(t, EventJoinRoom, roomPayload{Room: "dm:x:y"})
	assert.Equal(t, service.ErrRoomForbidden.Error(), errorOf().Message)

	a.conn.send(t, EventSendMessage, sendPayload{Room: "general"})
	assert.Equal(t, service.ErrEmptyMessage.Error(), errorOf().Message)

	a.conn.send(t, EventTyping, roomPayload{Room: "general"})
	assert.Equal(t, service.ErrRoomForbidden.Error(), errorOf().Message)

	a.conn.send(t, EventMarkRead, roomPayload{Room: "dm:a:b"})
	assert.Equal(t, "internal error", errorOf().Message)

	a.conn.send(t, "dance", map[string]string{})
	assert.Equal(t, "unknown event", errorOf().Message)

	a.conn.in <- []byte("not json")
	assert.Equal(t, "malformed frame", errorOf().Message)

	a.stop(t)
}

func TestServer_MarkRead(t *testing.T) {
	rooms := new(mockRooms)
	srv, _ := newTestServer(t, rooms)
	rooms.On("MarkRead", service.Viewer{UserID: "a"}, "dm:a:b").Return(nil)

	a := start(t, srv, alice)
	a.conn.send(t, EventMarkRead, roomPayload{Room: "dm:a:b"})

	var p readPayload
	require.NoError(t, json.Unmarshal(a.conn.expect(t, EventRead).Data, &p))
	assert.Equal(t, "dm:a:b", p.Room)
	a.stop(t)
	rooms.AssertExpectations(t)
}
