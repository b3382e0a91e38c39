package handler

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the auth endpoints. audit runs outermost so even
// rate-limited attempts leave a trail; rateLimit guards the credential
// endpoints against stuffing.
func RegisterRoutes(app *fiber.App, h *AuthHandler, rateLimit fiber.Handler, audit func(action string) fiber.Handler) {
	app.Post("/api/v1/register", audit("register"), rateLimit, h.Register)
	app.Post("/api/v1/login", audit("login"), rateLimit, h.Login)
}
