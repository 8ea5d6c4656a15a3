package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/auth"
	"fxacademy/internal/http/middleware"
	"fxacademy/internal/model"
)

var (
	studentID = auth.Identity{UserID: "6f1c2b9e-3a4d-4e5f-8a7b-1c2d3e4f5a6b", Role: model.RoleStudent}
	adminID   = auth.Identity{UserID: "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d", Role: model.RoleAdmin}
)

// newApp builds an app with the production error handler. A non-nil identity is injected as if
// Authenticate had run.
func newApp(id *auth.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	if id != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.IdentityLocalKey, *id)
			return c.Next()
		})
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := newApp(nil)
	app.Get("/limited", func(c *fiber.Ctx) error { return fiber.ErrTooManyRequests })
	app.Get("/denied", func(c *fiber.Ctx) error { return fiber.ErrForbidden })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("raw failure") })

	cases := map[string]struct {
		status int
		code   string
	}{
		"/limited": {http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		"/denied":  {http.StatusForbidden, "FORBIDDEN"},
		"/boom":    {http.StatusInternalServerError, "INTERNAL_ERROR"},
		"/missing": {http.StatusNotFound, "NOT_FOUND"},
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodGet, path, nil)
			assert.Equal(t, want.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, want.code, body.Error.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRespondError_Validation(t *testing.T) {
	app := newApp(nil)
	app.Post("/v", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	t.Run("field details", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/v", map[string]string{"email": "nope", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Contains(t, body.Error.Details, "email")
		assert.Contains(t, body.Error.Details, "password")
		assert.Contains(t, body.Error.Details, "name")
		assert.Contains(t, body.Error.Details, "invite_code")
		assert.Equal(t, "email must be a valid email address", body.Error.Details["email"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}
