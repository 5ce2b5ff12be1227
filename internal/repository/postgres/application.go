package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"uniride/internal/domain"
	"uniride/internal/repository"
)

const applicationColumns = `id, trip_id, user_id, passenger_name, passenger_phone, passenger_photo,
	origin_address, origin_lat, origin_lng,
	dest_address, dest_lat, dest_lng,
	requested_seats, status, applied_at`

// ApplicationRepository is a PostgreSQL implementation of repository.ApplicationRepository.
type ApplicationRepository struct {
	q Querier
}

// NewApplicationRepository creates a new PostgreSQL application repository.
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{q: db}
}

// NewApplicationRepositoryWithTx creates an application repository using a transaction.
func NewApplicationRepositoryWithTx(tx *sql.Tx) *ApplicationRepository {
	return &ApplicationRepository{q: tx}
}

// Create persists a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.ExecContext(ctx, query,
		app.ID,
		app.TripID,
		app.UserID,
		app.Passenger.Name,
		app.Passenger.Phone,
		app.Passenger.Photo,
		app.Origin.Address,
		app.Origin.Lat,
		app.Origin.Lng,
		app.Destination.Address,
		app.Destination.Lat,
		app.Destination.Lng,
		app.RequestedSeats,
		app.Status,
		app.AppliedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return repository.ErrDuplicate
	}

	return err
}

// GetActive retrieves the active application a user holds on a trip.
// Returns nil if none exists.
func (r *ApplicationRepository) GetActive(ctx context.Context, tripID, userID string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE trip_id = $1 AND user_id = $2 AND status IN ('waitlist', 'accepted', 'in_progress')
		LIMIT 1`

	app, err := scanApplication(r.q.QueryRowContext(ctx, query, tripID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return app, nil
}

// UpdateStatus moves an application to a new status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
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

// UpdateStatusByTrip moves every application on a trip currently in one of the
// from statuses to the target status.
func (r *ApplicationRepository) UpdateStatusByTrip(ctx context.Context, tripID string, from []domain.ApplicationStatus, to domain.ApplicationStatus) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	_, err := r.q.ExecContext(ctx,
		`UPDATE applications SET status = $1 WHERE trip_id = $2 AND status = ANY($3)`,
		to, tripID, pq.Array(statuses),
	)
	return err
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID,
		&app.TripID,
		&app.UserID,
		&app.Passenger.Name,
		&app.Passenger.Phone,
		&app.Passenger.Photo,
		&app.Origin.Address,
		&app.Origin.Lat,
		&app.Origin.Lng,
		&app.Destination.Address,
		&app.Destination.Lat,
		&app.Destination.Lng,
		&app.RequestedSeats,
		&app.Status,
		&app.AppliedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Ensure ApplicationRepository implements repository.ApplicationRepository.
var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)
