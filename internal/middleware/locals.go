package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/device"
)

// Locals keys shared between the middleware chain and the handlers behind it.
const (
	LocalUser        = "auth_user"
	LocalFingerprint = "fingerprint"
	LocalDevice      = "device_info"
	LocalResource    = "resource"

	// LocalRiskLevel lets a handler escalate the audit record's risk level
	// from a computed score; it overrides the route's static level.
	LocalRiskLevel = "risk_level"
)

// CurrentUser returns the identity attached by the auth gate, if any.
func CurrentUser(c *fiber.Ctx) (domain.AuthUser, bool) {
	user, ok := c.Locals(LocalUser).(domain.AuthUser)
	return user, ok
}

// RequestFingerprint returns the fingerprint attached earlier in the chain,
// falling back to deriving it on the spot for routes mounted without the
// fingerprint middleware.
func RequestFingerprint(c *fiber.Ctx) string {
	if fp, ok := c.Locals(LocalFingerprint).(string); ok && fp != "" {
		return fp
	}
	return device.Fingerprint(signalsFromCtx(c))
}

// RequestDevice returns the device descriptor attached earlier in the chain.
func RequestDevice(c *fiber.Ctx) device.Descriptor {
	if d, ok := c.Locals(LocalDevice).(device.Descriptor); ok {
		return d
	}
	return device.ParseUserAgent(string(c.Request().Header.UserAgent()))
}

func signalsFromCtx(c *fiber.Ctx) device.Signals {
	return device.Signals{
		UserAgent:      string(c.Request().Header.UserAgent()),
		AcceptLanguage: c.Get(fiber.HeaderAcceptLanguage),
		AcceptEncoding: c.Get(fiber.HeaderAcceptEncoding),
		ClientIP:       c.IP(),
		ForwardedFor:   c.Get(fiber.HeaderXForwardedFor),
	}
}
