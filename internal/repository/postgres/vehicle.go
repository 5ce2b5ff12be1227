package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"uniride/internal/domain"
	"uniride/internal/repository"
)

const vehicleColumns = `id, owner_uid, license_plate, model, capacity, soat_url, photo_url, created_at`

// VehicleRepository implements repository.VehicleRepository using PostgreSQL.
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new VehicleRepository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.OwnerUID,
		vehicle.LicensePlate,
		vehicle.Model,
		vehicle.Capacity,
		vehicle.SOATURL,
		vehicle.PhotoURL,
		vehicle.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return repository.ErrDuplicate
	}

	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByPlate retrieves a vehicle by normalized license plate.
func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE license_plate = $1`
	return r.getOne(ctx, query, plate)
}

// ListByOwner retrieves all vehicles registered by a user.
func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_uid = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(
			&v.ID, &v.OwnerUID, &v.LicensePlate, &v.Model,
			&v.Capacity, &v.SOATURL, &v.PhotoURL, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}

	return vehicles, rows.Err()
}

// Delete removes a vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *VehicleRepository) getOne(ctx context.Context, query string, arg any) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&v.ID, &v.OwnerUID, &v.LicensePlate, &v.Model,
		&v.Capacity, &v.SOATURL, &v.PhotoURL, &v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
