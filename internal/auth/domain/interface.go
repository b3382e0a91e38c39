package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain UserRepository

// UserRepository is the user-store contract the security pipeline consumes.
// Reads always include the security fields; lockout mutations are atomic
// conditional updates so concurrent failed logins never under-count.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error

	// IncrementLoginAttempts adds one failed attempt, and sets the lockout
	// horizon when lockUntil is non-nil, but only if the stored counter
	// still equals expectedAttempts. Returns false when another request got
	// there first; the caller re-reads and retries.
	IncrementLoginAttempts(ctx context.Context, userID string, expectedAttempts int, lockUntil *time.Time) (bool, error)

	// ResetLoginAttempts clears the counter and lockout after a successful
	// login and stamps last_login.
	ResetLoginAttempts(ctx context.Context, userID string, lastLogin time.Time) error

	// ClearExpiredLockout resets the counter once a lockout horizon has
	// passed. A no-op when the lockout is absent or still active.
	ClearExpiredLockout(ctx context.Context, userID string, now time.Time) error
}
