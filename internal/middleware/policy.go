package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

// ResourceFetcher loads the resource named by a route parameter so its owner
// reference can be compared against the requesting identity.
type ResourceFetcher func(ctx context.Context, id string) (domain.Ownable, error)

// RequireRole allows the request through only when the authenticated
// identity carries one of the given roles. Must be mounted behind AuthGate.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c, "Authentication required", autherror.CodeNoToken)
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":  "Insufficient permissions",
			"code":     autherror.CodeInsufficientPerms,
			"required": roles,
			"current":  user.Role,
		})
	}
}

// RequireOwnership loads the resource named by param and rejects the request
// unless the identity owns it or holds a privileged role. The loaded
// resource is attached to the request context so the handler does not fetch
// it twice.
func RequireOwnership(param string, fetch ResourceFetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c, "Authentication required", autherror.CodeNoToken)
		}

		resource, err := fetch(c.Context(), c.Params(param))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error verifying ownership",
				"code":    autherror.CodeOwnershipCheck,
			})
		}
		if resource == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Resource not found",
				"code":    autherror.CodeResourceNotFound,
			})
		}

		if !user.Role.Privileged() && resource.OwnerRef() != user.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You do not own this resource",
				"code":    autherror.CodeNotResourceOwner,
			})
		}

		c.Locals(LocalResource, resource)
		return c.Next()
	}
}
