package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type registerRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Name       string `json:"name" validate:"required,max=100"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	InviteCode string `json:"invite_code" validate:"required,max=64"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileResponse struct {
	*model.User
	SubscriptionActive bool `json:"subscription_active"`
}

// Register redeems an invite and creates a pending account.
//
// @Summary Register with an invite code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Registration"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		u, err := svc.Register(c.UserContext(), service.RegisterInput{
			Email:      req.Email,
			Name:       req.Name,
			Password:   req.Password,
			InviteCode: req.InviteCode,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Login exchanges credentials of an approved account for an access token.
//
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// Me returns the caller's profile.
//
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} profileResponse
// @Router /api/auth/me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Me(c.UserContext(), identity(c).UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profileResponse{User: u, SubscriptionActive: u.HasActiveSubscription(time.Now())})
	}
}
