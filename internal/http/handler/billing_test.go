package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fxacademy/internal/billing"
	"fxacademy/internal/model"
	"fxacademy/internal/service"
	serviceMocks "fxacademy/internal/service/mocks"
)

const planUUID = "8c7b6a5f-4e3d-4c2b-a1f0-9e8d7c6b5a4f"

func TestBillingHandlers(t *testing.T) {
	svc := new(serviceMocks.MockBillingService)
	app := newApp(&studentID)
	app.Get("/plans", ListPlans(svc))
	app.Post("/checkout", Checkout(svc))
	app.Post("/confirm", ConfirmSubscription(svc))

	t.Run("plans", func(t *testing.T) {
		svc.On("ListPlans", mock.Anything).Return([]model.Plan{{ID: planUUID, Name: "Monthly"}}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/plans", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("checkout", func(t *testing.T) {
		svc.On("Checkout", mock.Anything, studentID.UserID, planUUID).
			Return(&service.CheckoutResult{URL: "https://www.sandbox.paypal.com/webapps/billing/plans/subscribe?plan_id=P-1"}, nil).Once()

		resp := doJSON(t, app, http.MethodPost, "/checkout", map[string]string{"plan_id": planUUID})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("checkout inactive plan", func(t *testing.T) {
		svc.On("Checkout", mock.Anything, studentID.UserID, planUUID).Return(nil, service.ErrPlanInactive).Once()

		resp := doJSON(t, app, http.MethodPost, "/checkout", map[string]string{"plan_id": planUUID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "PLAN_INACTIVE", decodeError(t, resp).Error.Code)
	})

	t.Run("confirm conflict", func(t *testing.T) {
		svc.On("ConfirmSubscription", mock.Anything, studentID.UserID, planUUID, "I-BW452GLLEP1G").
			Return(nil, service.ErrSubscriptionConflict).Once()

		resp := doJSON(t, app, http.MethodPost, "/confirm", map[string]string{"plan_id": planUUID, "subscription_id": "I-BW452GLLEP1G"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("confirm requires subscription id", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/confirm", map[string]string{"plan_id": planUUID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Details, "subscription_id")
	})

	svc.AssertExpectations(t)
}

func TestPayPalWebhook(t *testing.T) {
	svc := new(serviceMocks.MockBillingService)
	app := newApp(nil)
	app.Post("/webhook", PayPalWebhook(svc))

	payload := []byte(`{"event_type":"BILLING.SUBSCRIPTION.CANCELLED","resource":{"id":"I-1"}}`)

	svc.On("HandleWebhook", mock.Anything, "shared", payload).Return(nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/webhook?token=shared", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	svc.On("HandleWebhook", mock.Anything, "wrong", payload).Return(billing.ErrBadWebhookToken).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/webhook?token=wrong", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_WEBHOOK_TOKEN", decodeError(t, resp).Error.Code)

	svc.AssertExpectations(t)
}
