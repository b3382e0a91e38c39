package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/ratelimit"
)

// RateLimit admits at most max requests per client IP within the trailing
// window. Every response carries the X-RateLimit headers so well-behaved
// clients can pace themselves before hitting 429.
func RateLimit(store *ratelimit.Store, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := store.Admit(c.IP(), max, window)

		c.Set("X-RateLimit-Limit", strconv.Itoa(max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if res.Limited {
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(int64(time.Until(res.ResetAt).Seconds())+1, 10))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later",
				"code":    autherror.CodeRateLimited,
			})
		}

		return c.Next()
	}
}
