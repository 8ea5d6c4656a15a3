package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) History(ctx context.Context, room string, before *time.Time, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, room, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

type MockPrivateRoomRepository struct {
	mock.Mock
}

func (m *MockPrivateRoomRepository) Open(ctx context.Context, room *model.PrivateRoom) (*model.PrivateRoom, error) {
	args := m.Called(ctx, room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PrivateRoom), args.Error(1)
}

func (m *MockPrivateRoomRepository) FindByID(ctx context.Context, id string) (*model.PrivateRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PrivateRoom), args.Error(1)
}

func (m *MockPrivateRoomRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockPrivateRoomRepository) Conversations(ctx context.Context, userID string) ([]model.DMConversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DMConversation), args.Error(1)
}

func (m *MockPrivateRoomRepository) MarkRead(ctx context.Context, room, userID string, at time.Time) error {
	return m.Called(ctx, room, userID, at).Error(0)
}

func (m *MockPrivateRoomRepository) UnreadTotal(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
