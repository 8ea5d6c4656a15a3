package postgres

import (
	"context"
	"database/sql"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

const planColumns = `id, name, description, price_cents, currency, interval_days, paypal_plan_id, active`

func scanPlan(s rowScanner) (*model.Plan, error) {
	var p model.Plan
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.IntervalDays,
		&p.PayPalPlanID,
		&p.Active,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// PlanPostgres is a PostgreSQL implementation of repository.PlanRepository.
type PlanPostgres struct {
	db *sql.DB
}

func NewPlanPostgres(db *sql.DB) *PlanPostgres {
	return &PlanPostgres{db: db}
}

var _ repository.PlanRepository = (*PlanPostgres)(nil)

func (r *PlanPostgres) ListActive(ctx context.Context) ([]model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE active ORDER BY price_cents, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *PlanPostgres) FindByID(ctx context.Context, id string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	return scanPlan(r.db.QueryRowContext(ctx, q, id))
}

func (r *PlanPostgres) FindByPayPalPlanID(ctx context.Context, paypalPlanID string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE paypal_plan_id = $1`
	return scanPlan(r.db.QueryRowContext(ctx, q, paypalPlanID))
}

func (r *PlanPostgres) Upsert(ctx context.Context, p *model.Plan) (*model.Plan, error) {
	const q = `
		INSERT INTO plans (id, name, description, price_cents, currency, interval_days, paypal_plan_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    price_cents = EXCLUDED.price_cents,
		    currency = EXCLUDED.currency,
		    interval_days = EXCLUDED.interval_days,
		    paypal_plan_id = EXCLUDED.paypal_plan_id,
		    active = EXCLUDED.active
		RETURNING ` + planColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.PriceCents,
		p.Currency,
		p.IntervalDays,
		p.PayPalPlanID,
		p.Active,
	)
	return scanPlan(row)
}

const subscriptionColumns = `id, user_id, plan_id, paypal_subscription_id, status, started_at, expires_at`

func scanSubscription(s rowScanner) (*model.Subscription, error) {
	var sub model.Subscription
	if err := s.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.PayPalSubscriptionID,
		&sub.Status,
		&sub.StartedAt,
		&sub.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

// SubscriptionPostgres is a PostgreSQL implementation of repository.SubscriptionRepository.
type SubscriptionPostgres struct {
	db *sql.DB
}

func NewSubscriptionPostgres(db *sql.DB) *SubscriptionPostgres {
	return &SubscriptionPostgres{db: db}
}

var _ repository.SubscriptionRepository = (*SubscriptionPostgres)(nil)

// Upsert never moves an existing row back to pending.
func (r *SubscriptionPostgres) Upsert(ctx context.Context, s *model.Subscription) (*model.Subscription, error) {
	const q = `
		INSERT INTO subscriptions (id, user_id, plan_id, paypal_subscription_id, status, started_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (paypal_subscription_id) DO UPDATE
		SET status = CASE WHEN EXCLUDED.status = 'pending' THEN subscriptions.status ELSE EXCLUDED.status END,
		    expires_at = GREATEST(subscriptions.expires_at, EXCLUDED.expires_at)
		RETURNING ` + subscriptionColumns
	row := r.db.QueryRowContext(ctx, q,
		s.ID,
		s.UserID,
		s.PlanID,
		s.PayPalSubscriptionID,
		s.Status,
		s.StartedAt,
		s.ExpiresAt,
	)
	return scanSubscription(row)
}

func (r *SubscriptionPostgres) FindByPayPalID(ctx context.Context, paypalSubscriptionID string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE paypal_subscription_id = $1`
	return scanSubscription(r.db.QueryRowContext(ctx, q, paypalSubscriptionID))
}

func (r *SubscriptionPostgres) SetStatus(ctx context.Context, paypalSubscriptionID string, status model.SubscriptionStatus) (*model.Subscription, error) {
	const q = `
		UPDATE subscriptions SET status = $2
		WHERE paypal_subscription_id = $1
		RETURNING ` + subscriptionColumns
	return scanSubscription(r.db.QueryRowContext(ctx, q, paypalSubscriptionID, status))
}
