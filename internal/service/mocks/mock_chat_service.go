package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Authorize(ctx context.Context, v service.Viewer, room string) error {
	return m.Called(ctx, v, room).Error(0)
}

func (m *MockChatService) History(ctx context.Context, v service.Viewer, room string, before *time.Time, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, v, room, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (m *MockChatService) Send(ctx context.Context, author model.UserSummary, room, body string) (*service.SentMessage, error) {
	args := m.Called(ctx, author, room, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SentMessage), args.Error(1)
}

func (m *MockChatService) OpenDM(ctx context.Context, v service.Viewer, peerID string) (*service.DMRoom, error) {
	args := m.Called(ctx, v, peerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DMRoom), args.Error(1)
}

func (m *MockChatService) Conversations(ctx context.Context, userID string) ([]model.DMConversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DMConversation), args.Error(1)
}

func (m *MockChatService) MarkRead(ctx context.Context, v service.Viewer, room string) error {
	return m.Called(ctx, v, room).Error(0)
}

func (m *MockChatService) UnreadTotal(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
