package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock provides a
// drop-in implementation for tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO qr_scans (
			id, qr_type, scanner_id, scanner_role, target_id, target_owner_id,
			success, risk_score,
			rapid_scanning, unusual_location, multiple_devices, off_hours, foreign_owner_scan,
			ip, device_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, e.ID, string(e.QRType), e.ScannerID, e.ScannerRole, e.TargetID, e.TargetOwnerID,
		e.Success, e.RiskScore,
		e.Flags.RapidScanning, e.Flags.UnusualLocation, e.Flags.MultipleDevices, e.Flags.OffHours, e.Flags.ForeignOwnerScan,
		e.IP, e.DeviceFingerprint, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scan event: %w", err)
	}
	return nil
}

// CountRecentByScanner counts events the scanner produced since the cutoff,
// the store-backed rendition of the velocity window.
func (s *PostgresStore) CountRecentByScanner(ctx context.Context, scannerID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM qr_scans
		WHERE scanner_id = $1 AND created_at >= $2
	`, scannerID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent scans: %w", err)
	}
	return n, nil
}

// DeleteExpired enforces the one-year retention contract at the data layer.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM qr_scans WHERE created_at < $1
	`, now.Add(-RetentionHorizon))
	if err != nil {
		return 0, fmt.Errorf("failed to expire scan events: %w", err)
	}
	return tag.RowsAffected(), nil
}
