package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) ListPlans(ctx context.Context) ([]model.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Plan), args.Error(1)
}

func (m *MockBillingService) Checkout(ctx context.Context, userID, planID string) (*service.CheckoutResult, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}

func (m *MockBillingService) ConfirmSubscription(ctx context.Context, userID, planID, paypalSubscriptionID string) (*model.Subscription, error) {
	args := m.Called(ctx, userID, planID, paypalSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockBillingService) HandleWebhook(ctx context.Context, token string, body []byte) error {
	return m.Called(ctx, token, body).Error(0)
}
