package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"uniride/internal/domain"
	"uniride/internal/repository"
)

const tripColumns = `id, driver_uid, driver_name, driver_photo,
	vehicle_model, vehicle_plate, vehicle_capacity,
	origin_address, origin_lat, origin_lng,
	dest_address, dest_lat, dest_lng,
	departure_at, seats, fare, status, created_at`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverUID,
		trip.Driver.Name,
		trip.Driver.Photo,
		trip.Vehicle.Model,
		trip.Vehicle.LicensePlate,
		trip.Vehicle.Capacity,
		trip.Origin.Address,
		trip.Origin.Lat,
		trip.Origin.Lng,
		trip.Destination.Address,
		trip.Destination.Lat,
		trip.Destination.Lng,
		trip.DepartureAt,
		trip.Seats,
		trip.Fare,
		trip.Status,
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID with its waitlist and passenger list.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachApplications(ctx, []*domain.Trip{trip}); err != nil {
		return nil, err
	}

	return trip, nil
}

// GetByIDs retrieves the trips with the given IDs, skipping missing ones.
func (r *TripRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ANY($1) ORDER BY departure_at DESC`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips, err := scanTrips(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachApplications(ctx, trips); err != nil {
		return nil, err
	}

	return trips, nil
}

// List retrieves trips matching the filter, soonest departure first.
func (r *TripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(pq.Array(statuses))+")")
	}
	if filter.DriverUID != "" {
		conds = append(conds, "driver_uid = "+arg(filter.DriverUID))
	}
	if !filter.DepartureFrom.IsZero() {
		conds = append(conds, "departure_at >= "+arg(filter.DepartureFrom))
	}
	if !filter.DepartureTo.IsZero() {
		conds = append(conds, "departure_at <= "+arg(filter.DepartureTo))
	}

	query := `SELECT ` + tripColumns + ` FROM trips`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY departure_at ASC LIMIT 200"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips, err := scanTrips(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachApplications(ctx, trips); err != nil {
		return nil, err
	}

	return trips, nil
}

// UpdateStatus moves a trip to a new lifecycle status.
func (r *TripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE trips SET status = $1 WHERE id = $2`, status, id)
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

// attachApplications loads the applications for the given trips and splits
// them into waitlist and passenger list. Finished entries stay in the
// passenger list so a completed trip still reports who rode; cancelled ones
// are dropped. Seat accounting is unaffected since AvailableSeats only
// matters before departure.
func (r *TripRepository) attachApplications(ctx context.Context, trips []*domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Trip, len(trips))
	ids := make([]string, 0, len(trips))
	for _, t := range trips {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE trip_id = ANY($1) AND status IN ('waitlist', 'accepted', 'in_progress', 'finished')
		ORDER BY applied_at ASC`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return err
		}
		trip, ok := byID[app.TripID]
		if !ok {
			continue
		}
		if app.Status == domain.ApplicationStatusWaitlist {
			trip.Waitlist = append(trip.Waitlist, app)
		} else {
			trip.Passengers = append(trip.Passengers, app)
		}
	}

	return rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	err := row.Scan(
		&trip.ID,
		&trip.DriverUID,
		&trip.Driver.Name,
		&trip.Driver.Photo,
		&trip.Vehicle.Model,
		&trip.Vehicle.LicensePlate,
		&trip.Vehicle.Capacity,
		&trip.Origin.Address,
		&trip.Origin.Lat,
		&trip.Origin.Lng,
		&trip.Destination.Address,
		&trip.Destination.Lat,
		&trip.Destination.Lng,
		&trip.DepartureAt,
		&trip.Seats,
		&trip.Fare,
		&trip.Status,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func scanTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
