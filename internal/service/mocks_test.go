package service

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/logging"
	"fxacademy/internal/mail"
	"fxacademy/internal/model"
	"fxacademy/internal/video"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testLogger() (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.New(&buf, time.UTC), &buf
}

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Generate(userID string, role model.Role) (string, time.Time, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// recordingMailer keeps dispatched messages instead of sending them.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *recordingMailer) Dispatch(_ context.Context, msgs ...mail.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msgs...)
}

func (r *recordingMailer) messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

type mockVideos struct{ mock.Mock }

func (m *mockVideos) Lookup(ctx context.Context, videoURL string) (*video.Metadata, error) {
	args := m.Called(ctx, videoURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.Metadata), args.Error(1)
}

type mockLessonAccess struct{ mock.Mock }

func (m *mockLessonAccess) CanAccessLesson(ctx context.Context, v Viewer, lessonID string) (bool, error) {
	args := m.Called(ctx, v, lessonID)
	return args.Bool(0), args.Error(1)
}

func ptr[T any](v T) *T { return &v }
