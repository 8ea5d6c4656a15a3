package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/logging"
)

// Logger logs each HTTP request as one JSON line with request_id, method, path, status and latency
// (milliseconds). Errors returned by the chain are rendered through the app's ErrorHandler first so
// the logged status is the one the client receives.
func Logger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := map[string]any{
			"msg":        "http_request",
			"request_id": GetRequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
			"ip":         c.IP(),
		}
		if id, ok := IdentityFrom(c); ok {
			fields["user_id"] = id.UserID
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			fields["level"] = "error"
		case status >= fiber.StatusBadRequest:
			fields["level"] = "warn"
		default:
			fields["level"] = "info"
		}
		log.Log(fields)

		return nil
	}
}

// LoggerWithWriter is Logger with a dedicated JSON logger on w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc))
}
