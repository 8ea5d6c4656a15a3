package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
)

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) plan(args mock.Arguments) (*model.Plan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListActive(ctx context.Context) ([]model.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id string) (*model.Plan, error) {
	return m.plan(m.Called(ctx, id))
}

func (m *MockPlanRepository) FindByPayPalPlanID(ctx context.Context, paypalPlanID string) (*model.Plan, error) {
	return m.plan(m.Called(ctx, paypalPlanID))
}

func (m *MockPlanRepository) Upsert(ctx context.Context, p *model.Plan) (*model.Plan, error) {
	return m.plan(m.Called(ctx, p))
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) sub(args mock.Arguments) (*model.Subscription, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, s *model.Subscription) (*model.Subscription, error) {
	return m.sub(m.Called(ctx, s))
}

func (m *MockSubscriptionRepository) FindByPayPalID(ctx context.Context, paypalSubscriptionID string) (*model.Subscription, error) {
	return m.sub(m.Called(ctx, paypalSubscriptionID))
}

func (m *MockSubscriptionRepository) SetStatus(ctx context.Context, paypalSubscriptionID string, status model.SubscriptionStatus) (*model.Subscription, error) {
	return m.sub(m.Called(ctx, paypalSubscriptionID, status))
}
