package repository

import (
	"context"
	"time"

	"uniride/internal/domain"
)

// TripFilter narrows trip listings. Zero values mean "any".
type TripFilter struct {
	Statuses  []domain.TripStatus
	DriverUID string
	// DepartureFrom/DepartureTo bound the departure instant.
	DepartureFrom time.Time
	DepartureTo   time.Time
}

// TripRepository defines the persistence operations for trips. Implementations
// load trips with their waitlist and passenger list populated.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByIDs retrieves the trips with the given IDs, skipping missing ones.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error)

	// List retrieves trips matching the filter, newest departure first.
	List(ctx context.Context, filter TripFilter) ([]*domain.Trip, error)

	// UpdateStatus moves a trip to a new lifecycle status.
	UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error
}

// ApplicationRepository defines the persistence operations for waitlist entries.
type ApplicationRepository interface {
	// Create persists a new application.
	Create(ctx context.Context, app *domain.Application) error

	// GetActive retrieves the active application a user holds on a trip.
	// Returns nil if none exists.
	GetActive(ctx context.Context, tripID, userID string) (*domain.Application, error)

	// UpdateStatus moves an application to a new status.
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error

	// UpdateStatusByTrip moves every application on a trip that is currently
	// in one of the from statuses to the target status. Used when the trip
	// itself transitions.
	UpdateStatusByTrip(ctx context.Context, tripID string, from []domain.ApplicationStatus, to domain.ApplicationStatus) error
}
