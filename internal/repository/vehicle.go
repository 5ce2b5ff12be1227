package repository

import (
	"context"

	"uniride/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetByPlate retrieves a vehicle by normalized license plate.
	GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)

	// ListByOwner retrieves all vehicles registered by a user.
	ListByOwner(ctx context.Context, ownerUID string) ([]*domain.Vehicle, error)

	// Delete removes a vehicle.
	Delete(ctx context.Context, id string) error
}
