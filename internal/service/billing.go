package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"fxacademy/internal/billing"
	"fxacademy/internal/logging"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

type CheckoutResult struct {
	URL  string      `json:"url"`
	Plan *model.Plan `json:"plan"`
}

// BillingService sells plans through PayPal hosted subscriptions.
type BillingService interface {
	ListPlans(ctx context.Context) ([]model.Plan, error)

	// Checkout returns the PayPal approval URL for planID, tagged with the user id.
	Checkout(ctx context.Context, userID, planID string) (*CheckoutResult, error)

	// ConfirmSubscription records the subscription id returned by the PayPal approval redirect as
	// pending. Access is only granted once PayPal's authenticated webhook activates it.
	ConfirmSubscription(ctx context.Context, userID, planID, paypalSubscriptionID string) (*model.Subscription, error)

	// HandleWebhook authenticates and applies a PayPal webhook. Unknown events are ignored.
	HandleWebhook(ctx context.Context, token string, body []byte) error
}

type billingService struct {
	plans  repository.PlanRepository
	subs   repository.SubscriptionRepository
	users  repository.UserRepository
	paypal *billing.PayPal
	log    *logging.Logger
	now    func() time.Time
}

func NewBillingService(
	plans repository.PlanRepository,
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	paypal *billing.PayPal,
	log *logging.Logger,
) BillingService {
	return &billingService{plans: plans, subs: subs, users: users, paypal: paypal, log: log, now: time.Now}
}

func (s *billingService) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return s.plans.ListActive(ctx)
}

func (s *billingService) activePlan(ctx context.Context, planID string) (*model.Plan, error) {
	if planID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !p.Active || p.PayPalPlanID == "" {
		return nil, ErrPlanInactive
	}
	return p, nil
}

func (s *billingService) Checkout(ctx context.Context, userID, planID string) (*CheckoutResult, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.activePlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{URL: s.paypal.SubscribeURL(p.PayPalPlanID, userID), Plan: p}, nil
}

func (s *billingService) ConfirmSubscription(ctx context.Context, userID, planID, paypalSubscriptionID string) (*model.Subscription, error) {
	paypalSubscriptionID = strings.TrimSpace(paypalSubscriptionID)
	if userID == "" || paypalSubscriptionID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.activePlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	existing, err := s.subs.FindByPayPalID(ctx, paypalSubscriptionID)
	switch {
	case err == nil && existing.UserID != userID:
		return nil, ErrSubscriptionConflict
	case err == nil:
		// The webhook may have arrived first.
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	now := s.now().UTC()
	return s.subs.Upsert(ctx, &model.Subscription{
		ID:                   uuid.NewString(),
		UserID:               userID,
		PlanID:               p.ID,
		PayPalSubscriptionID: paypalSubscriptionID,
		Status:               model.SubscriptionPending,
		StartedAt:            now,
		ExpiresAt:            now,
	})
}

// activate records the subscription as active for one more billing interval and extends the user.
func (s *billingService) activate(ctx context.Context, userID string, p *model.Plan, paypalSubscriptionID string, nextBilling *time.Time) (*model.Subscription, error) {
	now := s.now().UTC()
	expires := now.Add(time.Duration(p.IntervalDays) * day)
	if nextBilling != nil && nextBilling.After(expires) {
		expires = nextBilling.UTC()
	}
	sub, err := s.subs.Upsert(ctx, &model.Subscription{
		ID:                   uuid.NewString(),
		UserID:               userID,
		PlanID:               p.ID,
		PayPalSubscriptionID: paypalSubscriptionID,
		Status:               model.SubscriptionActive,
		StartedAt:            now,
		ExpiresAt:            expires,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.users.ExtendSubscription(ctx, userID, &p.ID, sub.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, token string, body []byte) error {
	if err := s.paypal.VerifyToken(token); err != nil {
		return err
	}
	ev, err := billing.ParseEvent(body)
	if err != nil {
		return err
	}
	fields := map[string]any{"component": "billing", "event_id": ev.ID, "event_type": ev.Type, "subscription_id": ev.SubscriptionID}

	switch ev.Type {
	case billing.EventSubscriptionActivated, billing.EventPaymentSaleCompleted:
		userID, plan, err := s.resolve(ctx, ev)
		if err != nil {
			return err
		}
		if plan == nil {
			s.log.Warn("paypal_webhook_unmatched", fields)
			return nil
		}
		if _, err := s.activate(ctx, userID, plan, ev.SubscriptionID, ev.NextBillingAt); err != nil {
			return err
		}
	case billing.EventSubscriptionCancelled, billing.EventSubscriptionExpired:
		status := model.SubscriptionCancelled
		if ev.Type == billing.EventSubscriptionExpired {
			status = model.SubscriptionExpired
		}
		if _, err := s.subs.SetStatus(ctx, ev.SubscriptionID, status); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			s.log.Warn("paypal_webhook_unmatched", fields)
			return nil
		}
	default:
		s.log.Info("paypal_webhook_ignored", fields)
		return nil
	}
	s.log.Info("paypal_webhook_applied", fields)
	return nil
}

// resolve finds the user and plan an event belongs to, first through the recorded subscription and
// then through the custom_id and plan_id PayPal echoes back. A nil plan means the event matches nothing.
func (s *billingService) resolve(ctx context.Context, ev *billing.Event) (string, *model.Plan, error) {
	if ev.SubscriptionID == "" {
		return "", nil, nil
	}
	sub, err := s.subs.FindByPayPalID(ctx, ev.SubscriptionID)
	switch {
	case err == nil:
		p, err := s.plans.FindByID(ctx, sub.PlanID)
		if err != nil {
			return "", nil, err
		}
		return sub.UserID, p, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", nil, err
	}

	if ev.PayPalPlanID == "" || uuid.Validate(ev.CustomID) != nil {
		return "", nil, nil
	}
	p, err := s.plans.FindByPayPalPlanID(ctx, ev.PayPalPlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, nil
		}
		return "", nil, err
	}
	if _, err := s.users.FindByID(ctx, ev.CustomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, nil
		}
		return "", nil, err
	}
	return ev.CustomID, p, nil
}
