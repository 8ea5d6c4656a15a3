package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/billing"
	"fxacademy/internal/http/middleware"
	"fxacademy/internal/logging"
	"fxacademy/internal/service"
	"fxacademy/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

type apiError struct {
	status int
	code   string
}

// serviceErrors maps domain sentinels to their HTTP rendering. The sentinel's text is the message.
var serviceErrors = map[error]apiError{
	service.ErrUserNotFound:   {fiber.StatusNotFound, "USER_NOT_FOUND"},
	service.ErrCourseNotFound: {fiber.StatusNotFound, "COURSE_NOT_FOUND"},
	service.ErrLessonNotFound: {fiber.StatusNotFound, "LESSON_NOT_FOUND"},
	service.ErrInviteNotFound: {fiber.StatusNotFound, "INVITE_NOT_FOUND"},
	service.ErrGrantNotFound:  {fiber.StatusNotFound, "GRANT_NOT_FOUND"},
	service.ErrPlanNotFound:   {fiber.StatusNotFound, "PLAN_NOT_FOUND"},
	service.ErrRoomNotFound:   {fiber.StatusNotFound, "ROOM_NOT_FOUND"},

	service.ErrIDRequired:     {fiber.StatusBadRequest, "INVALID_ID"},
	service.ErrReaderNil:      {fiber.StatusBadRequest, "FILE_REQUIRED"},
	service.ErrInvalidInput:   {fiber.StatusBadRequest, "INVALID_INPUT"},
	service.ErrWeakPassword:   {fiber.StatusBadRequest, "WEAK_PASSWORD"},
	service.ErrInvalidInvite:  {fiber.StatusBadRequest, "INVALID_INVITE"},
	service.ErrInvalidWindow:  {fiber.StatusBadRequest, "INVALID_WINDOW"},
	service.ErrEmptyMessage:   {fiber.StatusBadRequest, "EMPTY_MESSAGE"},
	service.ErrMessageTooLong: {fiber.StatusBadRequest, "MESSAGE_TOO_LONG"},
	service.ErrUnknownRoom:    {fiber.StatusBadRequest, "UNKNOWN_ROOM"},
	service.ErrSelfDM:         {fiber.StatusBadRequest, "SELF_DM"},
	service.ErrPlanInactive:   {fiber.StatusBadRequest, "PLAN_INACTIVE"},
	storage.ErrNotImage:       {fiber.StatusBadRequest, "NOT_AN_IMAGE"},
	storage.ErrEmptyUpload:    {fiber.StatusBadRequest, "FILE_REQUIRED"},
	storage.ErrCoverTooBig:    {fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	billing.ErrMalformedEvent: {fiber.StatusBadRequest, "MALFORMED_EVENT"},

	service.ErrInvalidCredentials: {fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	billing.ErrBadWebhookToken:    {fiber.StatusUnauthorized, "INVALID_WEBHOOK_TOKEN"},

	service.ErrPendingApproval:      {fiber.StatusForbidden, "PENDING_APPROVAL"},
	service.ErrAccountRejected:      {fiber.StatusForbidden, "ACCOUNT_REJECTED"},
	service.ErrLessonLocked:         {fiber.StatusForbidden, "LESSON_LOCKED"},
	service.ErrSubscriptionRequired: {fiber.StatusForbidden, "SUBSCRIPTION_REQUIRED"},
	service.ErrRoomForbidden:        {fiber.StatusForbidden, "ROOM_FORBIDDEN"},

	service.ErrEmailTaken:           {fiber.StatusConflict, "EMAIL_TAKEN"},
	service.ErrSlugTaken:            {fiber.StatusConflict, "SLUG_TAKEN"},
	service.ErrInviteCodeTaken:      {fiber.StatusConflict, "INVITE_CODE_TAKEN"},
	service.ErrSubscriptionConflict: {fiber.StatusConflict, "SUBSCRIPTION_CONFLICT"},
}

// respondError renders err. Known domain errors keep their message; anything else is logged and
// answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *validationError
	if errors.As(err, &verr) {
		return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", verr.fields)
	}
	if errors.Is(err, errBadBody) {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}

	for sentinel, api := range serviceErrors {
		if errors.Is(err, sentinel) {
			return writeError(c, api.status, api.code, sentinel.Error())
		}
	}

	logging.Default().Error("request_failed", err, map[string]any{
		"request_id": middleware.GetRequestID(c),
		"method":     c.Method(),
		"path":       c.Path(),
	})
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "access denied")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "TOO_MANY_REQUESTS", "too many requests")
		case fiber.StatusUpgradeRequired:
			return writeError(c, status, "UPGRADE_REQUIRED", "websocket upgrade required")
		default:
			if fe == nil {
				logging.Default().Error("unhandled_error", err, map[string]any{
					"request_id": middleware.GetRequestID(c),
					"path":       c.Path(),
				})
			}
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
