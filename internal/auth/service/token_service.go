package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/service TokenGenerator

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

// TokenGenerator issues and verifies the bearer tokens the pipeline trusts
// for identity linkage only. Account state is never taken from claims.
type TokenGenerator interface {
	Generate(userID, email, role string) (string, time.Time, error)
	Verify(tokenString string) (*JWTCustomClaims, error)
}

type TokenService struct {
	Secret       string
	AccessExpiry time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewTokenService(secret string, accessMinutes int) *TokenService {
	return &TokenService{
		Secret:       secret,
		AccessExpiry: time.Duration(accessMinutes) * time.Minute,
	}
}

// Generate signs an HS256 token carrying the identity claims and its expiry.
func (ts *TokenService) Generate(userID, email, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.AccessExpiry)

	claims := JWTCustomClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Verify parses and validates a token, distinguishing expiry (recoverable
// for the caller, who can re-authenticate) from tampering (not recoverable).
func (ts *TokenService) Verify(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherror.ErrInvalidToken
		}
		return []byte(ts.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, autherror.ErrInvalidToken
	}

	if !token.Valid {
		return nil, autherror.ErrInvalidToken
	}

	return claims, nil
}
