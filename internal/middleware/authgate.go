package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/narasimharaokandula8/qr-vehicle-docs/config"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/service"
	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

const bearerPrefix = "Bearer "

// AuthGate authenticates the request. The token proves identity linkage
// only; account state (active, blocked, locked) is always read fresh from
// the user store so a revoked account is rejected even while its tokens are
// still cryptographically valid.
func AuthGate(tokens service.TokenGenerator, users domain.UserRepository, cfg *config.Config) fiber.Handler {
	lookupTimeout := time.Duration(cfg.AuthLookupTimeout) * time.Millisecond

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return unauthorized(c, "Access token required", autherror.CodeNoToken)
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if tokenString == "" {
			return unauthorized(c, "Access token required", autherror.CodeNoToken)
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, autherror.ErrTokenExpired) {
				return unauthorized(c, "Token has expired", autherror.CodeTokenExpired)
			}
			return unauthorized(c, "Invalid token", autherror.CodeInvalidToken)
		}

		ctx, cancel := context.WithTimeout(c.Context(), lookupTimeout)
		defer cancel()

		user, err := users.GetByID(ctx, claims.UserID)
		if err != nil {
			// Store failures stay generic so probing cannot distinguish a
			// database outage from a missing account.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Authentication failed",
				"code":    autherror.CodeAuthError,
			})
		}
		if user == nil {
			return unauthorized(c, "User not found", autherror.CodeUserNotFound)
		}
		if !user.IsActive || user.IsBlocked {
			return unauthorized(c, "Account is inactive or blocked", autherror.CodeAccountInactive)
		}
		if user.IsLocked(time.Now()) {
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"message": "Account is temporarily locked",
				"code":    autherror.CodeAccountLocked,
			})
		}

		c.Locals(LocalUser, user.Projection())
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"code":    code,
	})
}
