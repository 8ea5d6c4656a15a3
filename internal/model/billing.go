package model

import "time"

type Plan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int    `json:"price_cents"`
	Currency     string `json:"currency"`
	IntervalDays int    `json:"interval_days"`
	PayPalPlanID string `json:"paypal_plan_id"`
	Active       bool   `json:"active"`
}

type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id"`
	PlanID               string             `json:"plan_id"`
	PayPalSubscriptionID string             `json:"paypal_subscription_id"`
	Status               SubscriptionStatus `json:"status"`
	StartedAt            time.Time          `json:"started_at"`
	ExpiresAt            time.Time          `json:"expires_at"`
}
