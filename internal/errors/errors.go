package errors

import (
	"errors"
)

var (
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrAccountLocked        = errors.New("account is temporarily locked")
	ErrAccountInactive      = errors.New("account is inactive or blocked")
	ErrUserNotFound         = errors.New("user not found")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrVaultDisabled        = errors.New("file encryption is disabled")
	ErrArtifactTooShort     = errors.New("encrypted artifact shorter than nonce+tag")
	ErrDecryptionFailed     = errors.New("failed to decrypt file")
	ErrInvalidQRPayload     = errors.New("invalid QR data")
)

// Stable machine-readable codes returned in JSON error bodies. Clients key
// retry behavior off these, so they must never change once shipped.
const (
	CodeNoToken            = "NO_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeAuthError          = "AUTH_ERROR"
	CodeInsufficientPerms  = "INSUFFICIENT_PERMISSIONS"
	CodeResourceNotFound   = "RESOURCE_NOT_FOUND"
	CodeNotResourceOwner   = "NOT_RESOURCE_OWNER"
	CodeOwnershipCheck     = "OWNERSHIP_CHECK_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInvalidQR          = "INVALID_QR"
	CodeServerError        = "SERVER_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)
