package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"uniride/internal/domain"
	"uniride/internal/redis"
	"uniride/internal/repository"
	"uniride/internal/repository/postgres"
)

const (
	// defaultSearchRadiusKm bounds how far a trip endpoint may be from the
	// searched point to count as a route match.
	defaultSearchRadiusKm = 3.0

	tripLockTTL = 10 * time.Second
)

// TripService handles trip publishing, search and lifecycle transitions.
type TripService struct {
	db                  *sql.DB
	tripRepo            repository.TripRepository
	appRepo             repository.ApplicationRepository
	userRepo            repository.UserRepository
	vehicleRepo         repository.VehicleRepository
	lockStore           redis.LockStoreInterface
	locationStore       redis.TripLocationStoreInterface
	cacheStore          *redis.CacheStore
	fareService         *FareService
	paymentService      *PaymentService
	receiptService      *ReceiptService
	notificationService *NotificationService
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	appRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
	vehicleRepo repository.VehicleRepository,
	lockStore redis.LockStoreInterface,
	locationStore redis.TripLocationStoreInterface,
	cacheStore *redis.CacheStore,
	fareService *FareService,
	paymentService *PaymentService,
	receiptService *ReceiptService,
	notificationService *NotificationService,
) *TripService {
	return &TripService{
		db:                  db,
		tripRepo:            tripRepo,
		appRepo:             appRepo,
		userRepo:            userRepo,
		vehicleRepo:         vehicleRepo,
		lockStore:           lockStore,
		locationStore:       locationStore,
		cacheStore:          cacheStore,
		fareService:         fareService,
		paymentService:      paymentService,
		receiptService:      receiptService,
		notificationService: notificationService,
	}
}

// PublishTripRequest contains the parameters for publishing a trip.
type PublishTripRequest struct {
	DriverUID   string
	VehicleID   string // empty picks the driver's first registered vehicle
	Origin      domain.Location
	Destination domain.Location
	DepartureAt time.Time
	Seats       int
	Fare        float64 // <= 0 requests a suggested fare
}

// Publish creates a new open trip. The driver must have at least one
// registered vehicle and the offered seats must fit in it.
func (s *TripService) Publish(ctx context.Context, req PublishTripRequest) (*domain.Trip, error) {
	if req.DriverUID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Seats <= 0 {
		return nil, ErrInvalidSeats
	}
	if req.DepartureAt.IsZero() || req.DepartureAt.Before(time.Now()) {
		return nil, ErrInvalidDeparture
	}
	if !validCoord(req.Origin) || !validCoord(req.Destination) {
		return nil, ErrInvalidLocation
	}

	driver, err := s.userRepo.GetByUID(ctx, req.DriverUID)
	if err != nil {
		return nil, err
	}

	vehicles, err := s.vehicleRepo.ListByOwner(ctx, req.DriverUID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, ErrNoVehicle
	}

	vehicle := vehicles[0]
	if req.VehicleID != "" {
		vehicle = nil
		for _, v := range vehicles {
			if v.ID == req.VehicleID {
				vehicle = v
				break
			}
		}
		if vehicle == nil {
			return nil, ErrNotVehicleOwner
		}
	}

	// Seats never include the driver's own.
	if req.Seats > vehicle.Capacity-1 {
		return nil, ErrSeatsExceedCapacity
	}

	fare := req.Fare
	if fare < 0 {
		return nil, ErrInvalidFare
	}
	if fare == 0 {
		fare = s.fareService.Suggest(ctx, req.Origin, req.Destination)
	}

	trip := &domain.Trip{
		ID:        uuid.New().String(),
		DriverUID: driver.UID,
		Driver: domain.DriverInfo{
			Name:  driver.FullName(),
			Photo: driver.Photo,
		},
		Vehicle: domain.VehicleInfo{
			Model:        vehicle.Model,
			LicensePlate: vehicle.LicensePlate,
			Capacity:     vehicle.Capacity,
		},
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartureAt: req.DepartureAt,
		Seats:       req.Seats,
		Fare:        fare,
		Status:      domain.TripStatusOpen,
		CreatedAt:   time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	// Index endpoints for geo search. Failure here leaves the trip
	// reachable through all=true listings only.
	if s.locationStore != nil {
		_ = s.locationStore.IndexTrip(ctx, trip.ID,
			trip.Origin.Lat, trip.Origin.Lng,
			trip.Destination.Lat, trip.Destination.Lng,
		)
	}

	return trip, nil
}

// Get retrieves a trip by ID, serving from cache when possible. Every
// mutation invalidates the entry, so a hit is at most the TTL stale.
func (s *TripService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetTrip(ctx, tripID); err == nil && cached != nil {
			return cached, nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetTrip(ctx, trip)
	}

	return trip, nil
}

// SearchRequest contains the route and time envelope of a trip search.
type SearchRequest struct {
	FromLat, FromLng float64
	ToLat, ToLng     float64
	WindowStart      time.Time
	WindowEnd        time.Time
	ViewerUID        string  // trips published by the viewer are excluded
	RadiusKm         float64 // 0 uses the default
}

// Search returns open trips with seats available whose origin and destination
// both fall inside the search radius and whose departure lies in the window.
func (s *TripService) Search(ctx context.Context, req SearchRequest) ([]*domain.Trip, error) {
	radiusKm := req.RadiusKm
	if radiusKm <= 0 {
		radiusKm = defaultSearchRadiusKm
	}

	nearOrigin, err := s.locationStore.FindNearOrigin(ctx, req.FromLat, req.FromLng, radiusKm)
	if err != nil {
		return nil, err
	}
	nearDest, err := s.locationStore.FindNearDestination(ctx, req.ToLat, req.ToLng, radiusKm)
	if err != nil {
		return nil, err
	}

	destSet := make(map[string]struct{}, len(nearDest))
	for _, m := range nearDest {
		destSet[m.TripID] = struct{}{}
	}

	var ids []string
	for _, m := range nearOrigin {
		if _, ok := destSet[m.TripID]; ok {
			ids = append(ids, m.TripID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	trips, err := s.tripRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Trip
	for _, t := range trips {
		if !t.AcceptsApplications() {
			continue
		}
		if req.ViewerUID != "" && t.DriverUID == req.ViewerUID {
			continue
		}
		if !req.WindowStart.IsZero() && t.DepartureAt.Before(req.WindowStart) {
			continue
		}
		if !req.WindowEnd.IsZero() && t.DepartureAt.After(req.WindowEnd) {
			continue
		}
		matched = append(matched, t)
	}

	return matched, nil
}

// All returns every upcoming open trip with seats available, independent of
// any route envelope.
func (s *TripService) All(ctx context.Context) ([]*domain.Trip, error) {
	trips, err := s.tripRepo.List(ctx, repository.TripFilter{
		Statuses:      []domain.TripStatus{domain.TripStatusOpen},
		DepartureFrom: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	var open []*domain.Trip
	for _, t := range trips {
		if t.AvailableSeats() > 0 {
			open = append(open, t)
		}
	}

	return open, nil
}

// ByIDs hydrates the trips referenced from a user's my-trips list.
func (s *TripService) ByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	return s.tripRepo.GetByIDs(ctx, ids)
}

// ListByDriver returns all trips published by a driver, any status.
func (s *TripService) ListByDriver(ctx context.Context, driverUID string) ([]*domain.Trip, error) {
	if driverUID == "" {
		return nil, ErrInvalidUserID
	}

	return s.tripRepo.List(ctx, repository.TripFilter{DriverUID: driverUID})
}

// Start moves a trip to in_progress. Only the trip's driver may start it, and
// a trip whose seats are exhausted (closed) must hold at least one confirmed
// passenger. Pending waitlist entries are cancelled: once the vehicle leaves
// there is nothing left to accept.
func (s *TripService) Start(ctx context.Context, tripID, driverUID string) (*domain.Trip, error) {
	unlock, err := s.lockTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	trip, err := s.authorizedTrip(ctx, tripID, driverUID)
	if err != nil {
		return nil, err
	}

	if !trip.CanTransition(domain.TripStatusInProgress) {
		return nil, ErrInvalidTransition
	}
	if trip.Status == domain.TripStatusClosed && len(trip.Passengers) == 0 {
		return nil, ErrNoPassengers
	}

	err = s.transition(ctx, trip, domain.TripStatusInProgress, func(tx *txRepos) error {
		if err := tx.apps.UpdateStatusByTrip(ctx, trip.ID,
			[]domain.ApplicationStatus{domain.ApplicationStatusAccepted},
			domain.ApplicationStatusInProgress,
		); err != nil {
			return err
		}
		return tx.apps.UpdateStatusByTrip(ctx, trip.ID,
			[]domain.ApplicationStatus{domain.ApplicationStatusWaitlist},
			domain.ApplicationStatusCancelled,
		)
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		for _, p := range trip.Passengers {
			_ = s.notificationService.NotifyTripStarted(ctx, trip, p.UserID)
		}
	}

	return s.tripRepo.GetByID(ctx, trip.ID)
}

// FinishTripResponse contains the result of finishing a trip.
type FinishTripResponse struct {
	Trip     *domain.Trip
	Receipts []*Receipt
}

// Finish moves an in-progress trip to finished and settles each passenger's
// fare share.
func (s *TripService) Finish(ctx context.Context, tripID, driverUID string) (*FinishTripResponse, error) {
	unlock, err := s.lockTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	trip, err := s.authorizedTrip(ctx, tripID, driverUID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusInProgress {
		return nil, ErrInvalidTransition
	}

	err = s.transition(ctx, trip, domain.TripStatusFinished, func(tx *txRepos) error {
		return tx.apps.UpdateStatusByTrip(ctx, trip.ID,
			[]domain.ApplicationStatus{domain.ApplicationStatusInProgress, domain.ApplicationStatusAccepted},
			domain.ApplicationStatusFinished,
		)
	})
	if err != nil {
		return nil, err
	}

	// Settle after the transition commits. A failed charge leaves the trip
	// finished; the payment stays FAILED and can be retried.
	var receipts []*Receipt
	for _, p := range trip.Passengers {
		amount := trip.Fare * float64(p.RequestedSeats)

		var payment *domain.Payment
		if s.paymentService != nil {
			payment, err = s.paymentService.ProcessPayment(ctx, ProcessPaymentRequest{
				TripID: trip.ID,
				UserID: p.UserID,
				Amount: amount,
			})
			if err != nil {
				payment = nil
			}
		}

		if s.receiptService != nil {
			receipt, _ := s.receiptService.Generate(ctx, GenerateReceiptRequest{
				Trip:        trip,
				Application: p,
				Payment:     payment,
			})
			if receipt != nil {
				receipts = append(receipts, receipt)
			}
		}

		if s.notificationService != nil {
			_ = s.notificationService.NotifyTripFinished(ctx, trip, p.UserID, amount)
		}
	}

	updated, err := s.tripRepo.GetByID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	return &FinishTripResponse{Trip: updated, Receipts: receipts}, nil
}

// Cancel moves a trip to cancelled from any non-terminal state and withdraws
// every active application.
func (s *TripService) Cancel(ctx context.Context, tripID, driverUID string) (*domain.Trip, error) {
	unlock, err := s.lockTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	trip, err := s.authorizedTrip(ctx, tripID, driverUID)
	if err != nil {
		return nil, err
	}

	if !trip.CanTransition(domain.TripStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	err = s.transition(ctx, trip, domain.TripStatusCancelled, func(tx *txRepos) error {
		return tx.apps.UpdateStatusByTrip(ctx, trip.ID,
			[]domain.ApplicationStatus{
				domain.ApplicationStatusWaitlist,
				domain.ApplicationStatusAccepted,
				domain.ApplicationStatusInProgress,
			},
			domain.ApplicationStatusCancelled,
		)
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		for _, a := range append(trip.Passengers, trip.Waitlist...) {
			_ = s.notificationService.NotifyTripCancelled(ctx, trip, a.UserID)
		}
	}

	return s.tripRepo.GetByID(ctx, trip.ID)
}

// txRepos bundles the transaction-scoped repositories used by a transition.
type txRepos struct {
	trips repository.TripRepository
	apps  repository.ApplicationRepository
}

// runTx executes fn against transaction-scoped repositories. Without a DB
// handle the plain repositories are used directly; in-memory implementations
// are their own consistency domain.
func runTx(ctx context.Context, db *sql.DB, trips repository.TripRepository, apps repository.ApplicationRepository, fn func(*txRepos) error) error {
	if db == nil {
		return fn(&txRepos{trips: trips, apps: apps})
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := &txRepos{
		trips: postgres.NewTripRepositoryWithTx(tx),
		apps:  postgres.NewApplicationRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// transition updates the trip status and its applications inside one
// transaction, then clears derived state (geo index, cache).
func (s *TripService) transition(ctx context.Context, trip *domain.Trip, to domain.TripStatus, mutate func(tx *txRepos) error) error {
	err := runTx(ctx, s.db, s.tripRepo, s.appRepo, func(repos *txRepos) error {
		if err := repos.trips.UpdateStatus(ctx, trip.ID, to); err != nil {
			return err
		}
		if mutate != nil {
			return mutate(repos)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.locationStore != nil && to != domain.TripStatusOpen {
		_ = s.locationStore.RemoveTrip(ctx, trip.ID)
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateTrip(ctx, trip.ID)
	}

	trip.Status = to
	return nil
}

// lockTrip acquires the per-trip seat lock, returning the release func.
// Lifecycle transitions and seat mutations serialize on the same lock so a
// cancel cannot slip between a concurrent accept's check and its commit.
func (s *TripService) lockTrip(ctx context.Context, tripID string) (func(), error) {
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

// authorizedTrip loads a trip and verifies the caller is its driver.
func (s *TripService) authorizedTrip(ctx context.Context, tripID, driverUID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
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

func validCoord(loc domain.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lng >= -180 && loc.Lng <= 180 &&
		!(loc.Lat == 0 && loc.Lng == 0)
}
