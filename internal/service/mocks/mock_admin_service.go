package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, status model.UserStatus, limit, offset int) (*service.UserListResult, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserListResult), args.Error(1)
}

func (m *MockAdminService) ApproveUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAdminService) RejectUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAdminService) CreateInvite(ctx context.Context, createdBy string, in service.InviteInput) (*model.Invite, error) {
	args := m.Called(ctx, createdBy, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invite), args.Error(1)
}

func (m *MockAdminService) ListInvites(ctx context.Context, limit, offset int) (*service.InviteListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InviteListResult), args.Error(1)
}

func (m *MockAdminService) RevokeInvite(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockAdminService) EnrollUser(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *MockAdminService) GrantAccess(ctx context.Context, grantedBy string, in service.GrantInput) (*model.AdhocAccess, error) {
	args := m.Called(ctx, grantedBy, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdhocAccess), args.Error(1)
}

func (m *MockAdminService) ListGrants(ctx context.Context, userID string) ([]model.AdhocAccess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdhocAccess), args.Error(1)
}

func (m *MockAdminService) RevokeGrant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminService) SetSubscription(ctx context.Context, userID string, planID *string, expiresAt *time.Time) (*model.User, error) {
	args := m.Called(ctx, userID, planID, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
