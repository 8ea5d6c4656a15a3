package handler

import (
	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/service"
)

type checkoutRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

type confirmRequest struct {
	PlanID         string `json:"plan_id" validate:"required,uuid"`
	SubscriptionID string `json:"subscription_id" validate:"required,max=64"`
}

// ListPlans returns the active subscription plans.
//
// @Summary List plans
// @Tags billing
// @Produce json
// @Success 200 {object} listResponse[model.Plan]
// @Router /api/billing/plans [get]
func ListPlans(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plans, err := svc.ListPlans(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list(plans))
	}
}

// Checkout returns the PayPal approval URL for a plan.
//
// @Summary Start checkout
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body checkoutRequest true "Plan"
// @Success 200 {object} service.CheckoutResult
// @Router /api/billing/checkout [post]
func Checkout(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req checkoutRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Checkout(c.UserContext(), identity(c).UserID, req.PlanID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// ConfirmSubscription records the subscription id PayPal returned after approval as pending.
//
// @Summary Confirm subscription
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body confirmRequest true "Subscription"
// @Success 200 {object} model.Subscription
// @Failure 409 {object} errorPayload
// @Router /api/billing/confirm [post]
func ConfirmSubscription(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req confirmRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		sub, err := svc.ConfirmSubscription(c.UserContext(), identity(c).UserID, req.PlanID, req.SubscriptionID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sub)
	}
}

// PayPalWebhook applies a PayPal webhook event authenticated by the shared ?token=.
//
// @Summary PayPal webhook
// @Tags billing
// @Accept json
// @Param token query string true "Shared webhook token"
// @Success 204
// @Failure 401 {object} errorPayload
// @Router /api/billing/webhook [post]
func PayPalWebhook(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.HandleWebhook(c.UserContext(), c.Query("token"), c.Body()); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
