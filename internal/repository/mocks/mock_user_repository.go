package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return m.user(m.Called(ctx, u))
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) List(ctx context.Context, status model.UserStatus, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	args := m.Called(ctx, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.User]), args.Error(1)
}

func (m *MockUserRepository) SetStatus(ctx context.Context, id string, status model.UserStatus, approvedAt *time.Time) (*model.User, error) {
	return m.user(m.Called(ctx, id, status, approvedAt))
}

func (m *MockUserRepository) ExtendSubscription(ctx context.Context, id string, planID *string, expiresAt time.Time) (*model.User, error) {
	return m.user(m.Called(ctx, id, planID, expiresAt))
}

func (m *MockUserRepository) SetSubscription(ctx context.Context, id string, planID *string, expiresAt *time.Time) (*model.User, error) {
	return m.user(m.Called(ctx, id, planID, expiresAt))
}

func (m *MockUserRepository) AdminEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) invite(args mock.Arguments) (*model.Invite, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invite), args.Error(1)
}

func (m *MockInviteRepository) Create(ctx context.Context, inv *model.Invite) (*model.Invite, error) {
	return m.invite(m.Called(ctx, inv))
}

func (m *MockInviteRepository) FindByCode(ctx context.Context, code string) (*model.Invite, error) {
	return m.invite(m.Called(ctx, code))
}

func (m *MockInviteRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Invite], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Invite]), args.Error(1)
}

func (m *MockInviteRepository) Revoke(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockInviteRepository) Claim(ctx context.Context, code, email string, now time.Time) (*model.Invite, error) {
	return m.invite(m.Called(ctx, code, email, now))
}

func (m *MockInviteRepository) Release(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}
