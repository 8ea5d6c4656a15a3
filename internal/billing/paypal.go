// Package billing builds PayPal hosted subscription links and decodes PayPal webhook events.
package billing

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fxacademy/internal/config"
)

const (
	liveHost    = "https://www.paypal.com"
	sandboxHost = "https://www.sandbox.paypal.com"
	subscribeAt = "/webapps/billing/plans/subscribe"
)

// Webhook event types handled by the platform.
const (
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventPaymentSaleCompleted  = "PAYMENT.SALE.COMPLETED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionExpired   = "BILLING.SUBSCRIPTION.EXPIRED"
)

var (
	ErrBadWebhookToken = errors.New("invalid webhook token")
	ErrMalformedEvent  = errors.New("malformed webhook event")
)

// PayPal holds the account-level settings needed for checkout links and webhooks.
type PayPal struct {
	host         string
	webhookToken string
}

func NewPayPal(c config.PayPalConfig) *PayPal {
	host := liveHost
	if c.Sandbox {
		host = sandboxHost
	}
	return &PayPal{host: host, webhookToken: c.WebhookToken}
}

// SubscribeURL is the hosted approval page for paypalPlanID; customID travels back in webhooks.
func (p *PayPal) SubscribeURL(paypalPlanID, customID string) string {
	q := url.Values{}
	q.Set("plan_id", paypalPlanID)
	q.Set("custom_id", customID)
	return p.host + subscribeAt + "?" + q.Encode()
}

// VerifyToken compares the shared webhook token in constant time. An unset token rejects everything.
func (p *PayPal) VerifyToken(token string) error {
	if p.webhookToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(p.webhookToken)) != 1 {
		return ErrBadWebhookToken
	}
	return nil
}

// Event is the part of a PayPal webhook the platform acts on.
type Event struct {
	ID             string
	Type           string
	SubscriptionID string
	PayPalPlanID   string
	CustomID       string
	NextBillingAt  *time.Time
}

type rawEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID                 string `json:"id"`
		PlanID             string `json:"plan_id"`
		CustomID           string `json:"custom_id"`
		Custom             string `json:"custom"`
		BillingAgreementID string `json:"billing_agreement_id"`
		BillingInfo        struct {
			NextBillingTime *time.Time `json:"next_billing_time"`
		} `json:"billing_info"`
	} `json:"resource"`
}

// ParseEvent decodes a webhook body. Sale events reference their subscription through
// billing_agreement_id; subscription events carry it as the resource id.
func ParseEvent(body []byte) (*Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if raw.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	}

	ev := &Event{
		ID:            raw.ID,
		Type:          raw.EventType,
		PayPalPlanID:  raw.Resource.PlanID,
		CustomID:      raw.Resource.CustomID,
		NextBillingAt: raw.Resource.BillingInfo.NextBillingTime,
	}
	if strings.HasPrefix(raw.EventType, "PAYMENT.SALE.") {
		ev.SubscriptionID = raw.Resource.BillingAgreementID
		if ev.CustomID == "" {
			ev.CustomID = raw.Resource.Custom
		}
	} else {
		ev.SubscriptionID = raw.Resource.ID
	}
	return ev, nil
}
