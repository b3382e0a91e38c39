package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/vehicle/domain"
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

const vehicleColumns = `id, vehicle_no, owner_id, drivers, access,
		vehicle_type, make, model, year, color,
		is_active, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, vehicle_no, owner_id, drivers, access,
			vehicle_type, make, model, year, color,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.ID, v.VehicleNo, v.OwnerID, v.Drivers, v.Access,
		v.VehicleType, v.Make, v.Model, v.Year, v.Color,
		v.IsActive, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE id = $1
		LIMIT 1;
	`
	return r.scanVehicle(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(
		&v.ID, &v.VehicleNo, &v.OwnerID, &v.Drivers, &v.Access,
		&v.VehicleType, &v.Make, &v.Model, &v.Year, &v.Color,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE owner_id = $1
		ORDER BY created_at DESC;
	`
	return r.listVehicles(ctx, query, ownerID)
}

// ListAccessible returns every vehicle the user owns, drives, or was granted
// access to.
func (r *PostgresRepository) ListAccessible(ctx context.Context, userID string) ([]domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE owner_id = $1 OR $1 = ANY(drivers) OR $1 = ANY(access)
		ORDER BY created_at DESC;
	`
	return r.listVehicles(ctx, query, userID)
}

func (r *PostgresRepository) listVehicles(ctx context.Context, query string, args ...any) ([]domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(
			&v.ID, &v.VehicleNo, &v.OwnerID, &v.Drivers, &v.Access,
			&v.VehicleType, &v.Make, &v.Model, &v.Year, &v.Color,
			&v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *PostgresRepository) UpdateDetails(ctx context.Context, v *domain.Vehicle) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles
		SET vehicle_no = $2, vehicle_type = $3, make = $4, model = $5,
			year = $6, color = $7, updated_at = now()
		WHERE id = $1
	`, v.ID, v.VehicleNo, v.VehicleType, v.Make, v.Model, v.Year, v.Color)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return nil
}

// AddDriver appends the driver once; re-assigning an existing driver is a
// no-op rather than an error.
func (r *PostgresRepository) AddDriver(ctx context.Context, vehicleID, driverID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles
		SET drivers = array_append(drivers, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(drivers))
	`, vehicleID, driverID)
	if err != nil {
		return fmt.Errorf("failed to assign driver: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GrantAccess(ctx context.Context, vehicleID, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles
		SET access = array_append(access, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(access))
	`, vehicleID, userID)
	if err != nil {
		return fmt.Errorf("failed to grant access: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddDocument(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vehicle_documents (
			id, vehicle_id, user_id, doc_type, file_name,
			original_name, mime_type, size_bytes, encrypted, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, doc.ID, doc.VehicleID, doc.UserID, string(doc.Type), doc.FileName,
		doc.OriginalName, doc.MimeType, doc.SizeBytes, doc.Encrypted, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.db.QueryRow(ctx, `
		SELECT id, vehicle_id, user_id, doc_type, file_name,
			original_name, mime_type, size_bytes, encrypted, uploaded_at
		FROM vehicle_documents
		WHERE id = $1
		LIMIT 1;
	`, id).Scan(
		&d.ID, &d.VehicleID, &d.UserID, &d.Type, &d.FileName,
		&d.OriginalName, &d.MimeType, &d.SizeBytes, &d.Encrypted, &d.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &d, nil
}
