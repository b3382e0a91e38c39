package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock provides a
// drop-in implementation for tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, phone, password_hash, role,
		is_verified, is_active, is_blocked,
		login_attempts, lockout_until, last_login,
		qr_code_type, email_notifications, sms_notifications,
		created_at, updated_at`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &user.Role,
		&user.IsVerified, &user.IsActive, &user.IsBlocked,
		&user.LoginAttempts, &user.LockoutUntil, &user.LastLogin,
		&user.Preferences.QRCodeType, &user.Preferences.EmailNotifications, &user.Preferences.SMSNotifications,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, name, email, phone, password_hash, role,
			is_verified, is_active, is_blocked, login_attempts,
			qr_code_type, email_notifications, sms_notifications,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, string(user.Role),
		user.IsVerified, user.IsActive, user.IsBlocked, user.LoginAttempts,
		user.Preferences.QRCodeType, user.Preferences.EmailNotifications, user.Preferences.SMSNotifications,
		user.CreatedAt, user.UpdatedAt)
	return err
}

// IncrementLoginAttempts is a compare-and-set: the increment applies only if
// the stored counter still matches what the caller read, so two concurrent
// failed logins can never collapse into a single count.
func (r *PostgresRepository) IncrementLoginAttempts(ctx context.Context, userID string, expectedAttempts int, lockUntil *time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_attempts = login_attempts + 1,
			lockout_until = COALESCE($3, lockout_until),
			updated_at = now()
		WHERE id = $1 AND login_attempts = $2
	`, userID, expectedAttempts, lockUntil)
	if err != nil {
		return false, fmt.Errorf("failed to increment login attempts: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) ResetLoginAttempts(ctx context.Context, userID string, lastLogin time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_attempts = 0,
			lockout_until = NULL,
			last_login = $2,
			updated_at = now()
		WHERE id = $1
	`, userID, lastLogin)
	if err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// ClearExpiredLockout resets the counter only when the stored horizon has
// already passed; an active lockout is left untouched.
func (r *PostgresRepository) ClearExpiredLockout(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_attempts = 0,
			lockout_until = NULL,
			updated_at = now()
		WHERE id = $1 AND lockout_until IS NOT NULL AND lockout_until <= $2
	`, userID, now)
	if err != nil {
		return fmt.Errorf("failed to clear expired lockout: %w", err)
	}
	return nil
}
