package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"uniride/internal/domain"
	"uniride/internal/redis"
	"uniride/internal/repository"
)

// BookingService handles the waitlist side of a trip: passenger applications
// and the driver's accept/remove decisions. Seat-mutating operations serialize
// on a per-trip redis lock so concurrent accepts cannot oversell seats.
type BookingService struct {
	db                  *sql.DB
	tripRepo            repository.TripRepository
	appRepo             repository.ApplicationRepository
	userRepo            repository.UserRepository
	lockStore           redis.LockStoreInterface
	locationStore       redis.TripLocationStoreInterface
	cacheStore          *redis.CacheStore
	notificationService *NotificationService
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	appRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	locationStore redis.TripLocationStoreInterface,
	cacheStore *redis.CacheStore,
	notificationService *NotificationService,
) *BookingService {
	return &BookingService{
		db:                  db,
		tripRepo:            tripRepo,
		appRepo:             appRepo,
		userRepo:            userRepo,
		lockStore:           lockStore,
		locationStore:       locationStore,
		cacheStore:          cacheStore,
		notificationService: notificationService,
	}
}

// ApplyRequest contains the parameters for applying to a trip.
type ApplyRequest struct {
	TripID         string
	UserID         string
	RequestedSeats int
	// Origin/Destination override the trip's endpoints when the passenger
	// wants a different pickup or drop. Zero values inherit the trip's.
	Origin      domain.Location
	Destination domain.Location
}

// Apply files a passenger's request to join a trip's waitlist and returns the
// updated trip.
func (s *BookingService) Apply(ctx context.Context, req ApplyRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.RequestedSeats <= 0 {
		return nil, ErrInvalidSeats
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverUID == req.UserID {
		return nil, ErrOwnTrip
	}
	if !trip.AcceptsApplications() {
		return nil, ErrTripNotOpen
	}
	if req.RequestedSeats > trip.AvailableSeats() {
		return nil, ErrSeatConflict
	}

	existing, err := s.appRepo.GetActive(ctx, req.TripID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyApplied
	}

	passenger, err := s.userRepo.GetByUID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	origin := req.Origin
	if origin.Address == "" && origin.Lat == 0 && origin.Lng == 0 {
		origin = trip.Origin
	}
	destination := req.Destination
	if destination.Address == "" && destination.Lat == 0 && destination.Lng == 0 {
		destination = trip.Destination
	}

	app := &domain.Application{
		ID:     uuid.New().String(),
		TripID: req.TripID,
		UserID: req.UserID,
		Passenger: domain.PassengerInfo{
			Name:  passenger.FullName(),
			Phone: passenger.Phone,
			Photo: passenger.Photo,
		},
		Origin:         origin,
		Destination:    destination,
		RequestedSeats: req.RequestedSeats,
		Status:         domain.ApplicationStatusWaitlist,
		AppliedAt:      time.Now(),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateTrip(ctx, trip.ID)
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyApplicationReceived(ctx, trip, app)
	}

	return s.tripRepo.GetByID(ctx, req.TripID)
}

// Accept promotes a waitlist entry to the passenger list, consuming seats.
// The trip closes when the last seat is taken.
func (s *BookingService) Accept(ctx context.Context, tripID, driverUID, userID string) (*domain.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	unlock, err := s.lockTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	trip, err := s.driverTrip(ctx, tripID, driverUID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusOpen {
		return nil, ErrTripNotOpen
	}

	var entry *domain.Application
	for _, a := range trip.Waitlist {
		if a.UserID == userID {
			entry = a
			break
		}
	}
	if entry == nil {
		return nil, ErrNotOnWaitlist
	}

	if entry.RequestedSeats > trip.AvailableSeats() {
		return nil, ErrSeatConflict
	}

	err = s.mutate(ctx, trip.ID, func(tx *txRepos) error {
		if err := tx.apps.UpdateStatus(ctx, entry.ID, domain.ApplicationStatusAccepted); err != nil {
			return err
		}
		// Last seat taken closes the trip.
		if trip.AvailableSeats()-entry.RequestedSeats == 0 {
			return tx.trips.UpdateStatus(ctx, trip.ID, domain.TripStatusClosed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.tripRepo.GetByID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	if s.locationStore != nil && updated.Status == domain.TripStatusClosed {
		_ = s.locationStore.RemoveTrip(ctx, trip.ID)
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyApplicationAccepted(ctx, updated, userID)
	}

	return updated, nil
}

// RemovePassenger takes a confirmed passenger off the trip, freeing their
// seats. A closed trip reopens.
func (s *BookingService) RemovePassenger(ctx context.Context, tripID, driverUID, userID string) (*domain.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	unlock, err := s.lockTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	trip, err := s.driverTrip(ctx, tripID, driverUID)
	if err != nil {
		return nil, err
	}

	if trip.Terminal() {
		return nil, ErrInvalidTransition
	}

	var entry *domain.Application
	for _, p := range trip.Passengers {
		if p.UserID == userID {
			entry = p
			break
		}
	}
	if entry == nil {
		return nil, ErrNotPassenger
	}

	err = s.mutate(ctx, trip.ID, func(tx *txRepos) error {
		if err := tx.apps.UpdateStatus(ctx, entry.ID, domain.ApplicationStatusCancelled); err != nil {
			return err
		}
		if trip.Status == domain.TripStatusClosed {
			return tx.trips.UpdateStatus(ctx, trip.ID, domain.TripStatusOpen)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.tripRepo.GetByID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	if s.locationStore != nil && trip.Status == domain.TripStatusClosed && updated.Status == domain.TripStatusOpen {
		_ = s.locationStore.IndexTrip(ctx, updated.ID,
			updated.Origin.Lat, updated.Origin.Lng,
			updated.Destination.Lat, updated.Destination.Lng,
		)
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyPassengerRemoved(ctx, updated, userID)
	}

	return updated, nil
}

// CancelParticipation withdraws the caller's own entry, whether it still sits
// on the waitlist or was already accepted. Not allowed once the trip finished
// or was cancelled.
func (s *BookingService) CancelParticipation(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	unlock, err := s.lockTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Terminal() {
		return nil, ErrParticipationLocked
	}

	entry := trip.ApplicationBy(userID)
	if entry == nil {
		return nil, ErrNotPassenger
	}

	wasPassenger := entry.Status != domain.ApplicationStatusWaitlist

	err = s.mutate(ctx, trip.ID, func(tx *txRepos) error {
		if err := tx.apps.UpdateStatus(ctx, entry.ID, domain.ApplicationStatusCancelled); err != nil {
			return err
		}
		if wasPassenger && trip.Status == domain.TripStatusClosed {
			return tx.trips.UpdateStatus(ctx, trip.ID, domain.TripStatusOpen)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyParticipationCancelled(ctx, trip, userID)
	}

	return s.tripRepo.GetByID(ctx, trip.ID)
}

// mutate runs application/trip updates inside one transaction and invalidates
// the trip cache afterwards.
func (s *BookingService) mutate(ctx context.Context, tripID string, fn func(tx *txRepos) error) error {
	if err := runTx(ctx, s.db, s.tripRepo, s.appRepo, fn); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateTrip(ctx, tripID)
	}

	return nil
}

// driverTrip loads a trip and verifies the caller is its driver.
func (s *BookingService) driverTrip(ctx context.Context, tripID, driverUID string) (*domain.Trip, error) {
	if driverUID == "" {
		return nil, ErrInvalidUserID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverUID != driverUID {
		return nil, ErrNotTripDriver
	}

	return trip, nil
}

// lockTrip acquires the per-trip seat lock, returning the release func.
func (s *BookingService) lockTrip(ctx context.Context, tripID string) (func(), error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if s.lockStore == nil {
		return func() {}, nil
	}

	locked, err := s.lockStore.AcquireTripLock(ctx, tripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrTripBusy
	}

	return func() { _ = s.lockStore.ReleaseTripLock(ctx, tripID) }, nil
}
