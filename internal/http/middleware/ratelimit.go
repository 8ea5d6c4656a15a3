package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/logging"
)

// Limiter counts hits per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimit allows limit requests per client IP and window under scope. A nil limiter disables it.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration, log *logging.Logger) fiber.Handler {
	if limiter == nil || limit <= 0 {
		return Noop()
	}

	return func(c *fiber.Ctx) error {
		allowed, retryAfter, err := limiter.Allow(c.UserContext(), scope+":"+c.IP(), limit, window)
		if err != nil {
			log.Error("rate_limit_failed", err, map[string]any{
				"request_id": GetRequestID(c),
				"scope":      scope,
			})
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}
