package domain

//go:generate mockgen -destination=../../mocks/mock_vehicle_repository.go -package=mocks github.com/narasimharaokandula8/qr-vehicle-docs/internal/vehicle/domain VehicleRepository

import (
	"context"
)

// VehicleRepository is the persistence contract for vehicles and their
// documents. Not-found lookups return (nil, nil) so callers can distinguish
// absence from infrastructure failure.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	GetByID(ctx context.Context, id string) (*Vehicle, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Vehicle, error)
	ListAccessible(ctx context.Context, userID string) ([]Vehicle, error)
	UpdateDetails(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id string) error
	AddDriver(ctx context.Context, vehicleID, driverID string) error
	GrantAccess(ctx context.Context, vehicleID, userID string) error

	AddDocument(ctx context.Context, doc *Document) error
	GetDocumentByID(ctx context.Context, id string) (*Document, error)
}
