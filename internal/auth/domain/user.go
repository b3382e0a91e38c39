package domain

import "time"

// Role is the coarse authorization level attached to every account.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleDriver Role = "driver"
	RolePolice Role = "police"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleDriver, RolePolice, RoleAdmin:
		return true
	}
	return false
}

// Privileged roles pass ownership checks on any resource.
func (r Role) Privileged() bool {
	return r == RolePolice || r == RoleAdmin
}

// Preferences are the user-tunable settings carried in the identity
// projection.
type Preferences struct {
	QRCodeType         string `json:"qr_code_type"`
	EmailNotifications bool   `json:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications"`
}

// User is the authoritative account record, including the security fields
// the lockout state machine mutates. Tokens only link to it; account state
// is always read fresh from here.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role

	IsVerified bool
	IsActive   bool
	IsBlocked  bool

	LoginAttempts int
	LockoutUntil  *time.Time
	LastLogin     *time.Time

	Preferences Preferences

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether a lockout horizon is set and still in the future.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(now)
}

// OwnerRef makes User ownable by itself: a user's record is owned by that
// user.
func (u *User) OwnerRef() string {
	return u.ID
}

// AuthUser is the identity projection attached to an authenticated request.
// It deliberately excludes the security counters.
type AuthUser struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Name        string      `json:"name"`
	IsVerified  bool        `json:"is_verified"`
	Preferences Preferences `json:"preferences"`
}

// Projection builds the request-scoped identity view of the user.
func (u *User) Projection() AuthUser {
	return AuthUser{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Name:        u.Name,
		IsVerified:  u.IsVerified,
		Preferences: u.Preferences,
	}
}

// Ownable is the capability a resource exposes so the ownership check can
// compare one well-defined owner reference instead of probing legacy field
// names at runtime.
type Ownable interface {
	OwnerRef() string
}
