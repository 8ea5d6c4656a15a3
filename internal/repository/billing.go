package repository

import (
	"context"

	"fxacademy/internal/model"
)

// PlanRepository defines data access for subscription plans.
type PlanRepository interface {
	// ListActive returns active plans ordered by price.
	ListActive(ctx context.Context) ([]model.Plan, error)

	FindByID(ctx context.Context, id string) (*model.Plan, error)
	FindByPayPalPlanID(ctx context.Context, paypalPlanID string) (*model.Plan, error)

	// Upsert inserts the plan or updates the one with the same name.
	Upsert(ctx context.Context, p *model.Plan) (*model.Plan, error)
}

// SubscriptionRepository defines data access for PayPal subscriptions.
type SubscriptionRepository interface {
	// Upsert records the subscription keyed by its PayPal id. On conflict the status is overwritten
	// and expires_at only moves forward.
	Upsert(ctx context.Context, s *model.Subscription) (*model.Subscription, error)

	FindByPayPalID(ctx context.Context, paypalSubscriptionID string) (*model.Subscription, error)

	// SetStatus returns sql.ErrNoRows when the subscription is unknown.
	SetStatus(ctx context.Context, paypalSubscriptionID string, status model.SubscriptionStatus) (*model.Subscription, error)
}
