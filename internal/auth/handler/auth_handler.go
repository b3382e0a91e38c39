package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/dto"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/service"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/device"
	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid input",
			"code":    autherror.CodeValidationError,
		})
	}

	user, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
			"code":    autherror.CodeValidationError,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"id":      user.ID,
		"email":   user.Email,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid input",
			"code":    autherror.CodeValidationError,
		})
	}

	// Capture request metadata for the audit trail.
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())
	input.Fingerprint = device.Fingerprint(device.Signals{
		UserAgent:      input.UserAgent,
		AcceptLanguage: c.Get(fiber.HeaderAcceptLanguage),
		AcceptEncoding: c.Get(fiber.HeaderAcceptEncoding),
		ClientIP:       input.IPAddress,
		ForwardedFor:   c.Get(fiber.HeaderXForwardedFor),
	})

	resp, err := h.userService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrAccountLocked):
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"message": "Account is temporarily locked",
				"code":    autherror.CodeAccountLocked,
			})
		case errors.Is(err, autherror.ErrAccountInactive):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Account is inactive or blocked",
				"code":    autherror.CodeAccountInactive,
			})
		case errors.Is(err, autherror.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid credentials",
				"code":    autherror.CodeInvalidCredentials,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Server error",
				"code":    autherror.CodeAuthError,
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
