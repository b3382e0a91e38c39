package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/narasimharaokandula8/qr-vehicle-docs/config"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/dto"
	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

// incrementRetries bounds how often a failed-login increment is retried when
// concurrent attempts race on the same account.
const incrementRetries = 3

type UserService struct {
	repo         domain.UserRepository
	tokenService TokenGenerator
	cfg          *config.Config
}

func NewUserService(repo domain.UserRepository, tokenService TokenGenerator, cfg *config.Config) *UserService {
	return &UserService{
		repo:         repo,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, errors.New("name, email and password are required")
	}

	existingUser, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	role := domain.Role(input.Role)
	if input.Role == "" {
		role = domain.RoleOwner
	}
	if !role.Valid() || role == domain.RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", input.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     true,
		Preferences:  domain.Preferences{QRCodeType: "single", EmailNotifications: true, SMSNotifications: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login drives the lockout state machine:
//
//	Normal --failed, attempts+1 < max--> Normal
//	Normal --failed, attempts+1 >= max--> Locked (lockout_until = now + window)
//	Locked --now >= lockout_until--> Normal (attempts reset on next evaluation)
//	any    --successful login--> Normal (attempts reset, last_login stamped)
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrInvalidCredentials
	}

	now := time.Now()

	if !user.IsActive || user.IsBlocked {
		return nil, autherror.ErrAccountInactive
	}

	if user.IsLocked(now) {
		return nil, autherror.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		if err := s.recordFailedAttempt(ctx, user, now); err != nil {
			log.Printf("warn: failed to record login attempt for user %s: %v", user.ID, err)
		}
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.repo.ResetLoginAttempts(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to reset login attempts: %w", err)
	}

	token, expiresAt, err := s.tokenService.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.TokenResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Projection(),
	}, nil
}

// recordFailedAttempt applies one failed-login transition using an atomic
// conditional increment. When two requests race, the loser re-reads and
// retries so the fifth failure is never missed.
func (s *UserService) recordFailedAttempt(ctx context.Context, user *domain.User, now time.Time) error {
	for i := 0; i < incrementRetries; i++ {
		// A lockout whose horizon has passed resets the counter before the
		// current failure is evaluated.
		if user.LockoutUntil != nil && !user.LockoutUntil.After(now) {
			if err := s.repo.ClearExpiredLockout(ctx, user.ID, now); err != nil {
				return err
			}
			user.LoginAttempts = 0
			user.LockoutUntil = nil
		}

		var lockUntil *time.Time
		if user.LoginAttempts+1 >= s.cfg.LoginMaxAttempts {
			t := now.Add(time.Duration(s.cfg.LockoutMinutes) * time.Minute)
			lockUntil = &t
		}

		updated, err := s.repo.IncrementLoginAttempts(ctx, user.ID, user.LoginAttempts, lockUntil)
		if err != nil {
			return err
		}
		if updated {
			return nil
		}

		// Version conflict: a concurrent attempt incremented first.
		fresh, err := s.repo.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return autherror.ErrUserNotFound
		}
		if fresh.IsLocked(now) {
			// The racing attempt already locked the account; counting this
			// failure on top would push attempts past the threshold.
			return nil
		}
		user = fresh
	}
	return fmt.Errorf("gave up recording login attempt after %d retries", incrementRetries)
}
