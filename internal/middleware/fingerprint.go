package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/device"
)

// DeviceFingerprint derives the request's device correlation id and a coarse
// device descriptor and attaches both to the request context. It never
// rejects a request: the fingerprint is a correlation signal, not an
// authentication factor.
func DeviceFingerprint() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalFingerprint, device.Fingerprint(signalsFromCtx(c)))
		c.Locals(LocalDevice, device.ParseUserAgent(string(c.Request().Header.UserAgent())))
		return c.Next()
	}
}
