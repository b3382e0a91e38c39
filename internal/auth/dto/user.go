package dto

import (
	"time"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
)

type UserOutput struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type TokenResponse struct {
	Message   string          `json:"message"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      domain.AuthUser `json:"user"`
}
