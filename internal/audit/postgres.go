package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists audit records. It doubles as the pipeline's primary
// sink.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Persist writes one immutable audit record.
func (s *PostgresStore) Persist(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.RiskLevel == "" {
		rec.RiskLevel = RiskLow
	}

	details, err := json.Marshal(rec.Details)
	if err != nil {
		details = []byte("{}")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO audit_logs (
			id, actor_id, actor_role, action, category,
			resource_type, resource_id, ip, user_agent,
			http_method, endpoint, status_code, success, duration_ms,
			risk_level, flagged, error_message, session_id,
			device_fingerprint, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, rec.ID, nullable(rec.ActorID), nullable(rec.ActorRole), rec.Action, string(rec.Category),
		nullable(rec.ResourceType), nullable(rec.ResourceID), rec.IP, rec.UserAgent,
		rec.Method, rec.Endpoint, rec.StatusCode, rec.Success, rec.DurationMs,
		string(rec.RiskLevel), rec.Flagged, nullable(rec.ErrorMessage), nullable(rec.SessionID),
		rec.DeviceFingerprint, details, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Flag is the single allowed mutation: it marks the record suspicious and
// raises its risk level to high.
func (s *PostgresStore) Flag(ctx context.Context, id, reason string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE audit_logs
		SET flagged = TRUE, flag_reason = $2, risk_level = 'high'
		WHERE id = $1
	`, id, reason)
	if err != nil {
		return fmt.Errorf("failed to flag audit record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("audit record %s not found", id)
	}
	return nil
}

// DeleteExpired enforces the two-year retention horizon at the data layer.
// Intended to back a scheduled job or a pg_cron task, not an in-process loop.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM audit_logs WHERE created_at < $1
	`, now.Add(-RetentionHorizon))
	if err != nil {
		return 0, fmt.Errorf("failed to expire audit records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
