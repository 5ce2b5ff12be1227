package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"uniride/internal/domain"
	"uniride/internal/redis"
	"uniride/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository. When linked
// to a MockApplicationRepository, reads return trips with their waitlist and
// passenger list attached, mirroring the SQL implementation.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Apps feeds the waitlist/passenger attachment on reads.
	Apps *MockApplicationRepository

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	GetError          error
	UpdateStatusError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository(apps *MockApplicationRepository) *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
		Apps:  apps,
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	trip, ok := m.trips[id]
	m.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.hydrate(trip), nil
}

func (m *MockTripRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(ids))
	for _, id := range ids {
		if trip, ok := m.trips[id]; ok {
			result = append(result, m.hydrate(trip))
		}
	}
	return result, nil
}

func (m *MockTripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, trip := range m.trips {
		if filter.DriverUID != "" && trip.DriverUID != filter.DriverUID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, trip.Status) {
			continue
		}
		if !filter.DepartureFrom.IsZero() && trip.DepartureAt.Before(filter.DepartureFrom) {
			continue
		}
		if !filter.DepartureTo.IsZero() && trip.DepartureAt.After(filter.DepartureTo) {
			continue
		}
		result = append(result, m.hydrate(trip))
	}
	return result, nil
}

func (m *MockTripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.Status = status
	return nil
}

// GetTrip returns the stored trip for test assertions, hydrated.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil
	}
	return m.hydrate(trip)
}

// hydrate copies the trip and attaches its active applications. Caller holds
// at least a read lock.
func (m *MockTripRepository) hydrate(trip *domain.Trip) *domain.Trip {
	copied := *trip
	copied.Waitlist = nil
	copied.Passengers = nil
	if m.Apps != nil {
		for _, app := range m.Apps.byTrip(trip.ID) {
			switch app.Status {
			case domain.ApplicationStatusWaitlist:
				copied.Waitlist = append(copied.Waitlist, app)
			case domain.ApplicationStatusAccepted, domain.ApplicationStatusInProgress,
				domain.ApplicationStatusFinished:
				copied.Passengers = append(copied.Passengers, app)
			}
		}
	}
	return &copied
}

func containsStatus(statuses []domain.TripStatus, status domain.TripStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK APPLICATION REPOSITORY
// ──────────────────────────────────────────────

// MockApplicationRepository is a mock implementation of ApplicationRepository.
type MockApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]*domain.Application

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockApplicationRepository creates a new mock application repository.
func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{
		apps: make(map[string]*domain.Application),
	}
}

// AddApplication adds an application to the mock repository.
func (m *MockApplicationRepository) AddApplication(app *domain.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID] = app
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.TripID == app.TripID && existing.UserID == app.UserID && existing.Status.Active() {
			return repository.ErrDuplicate
		}
	}
	m.apps[app.ID] = app
	return nil
}

func (m *MockApplicationRepository) GetActive(ctx context.Context, tripID, userID string) (*domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, app := range m.apps {
		if app.TripID == tripID && app.UserID == userID && app.Status.Active() {
			copied := *app
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return repository.ErrNotFound
	}
	app.Status = status
	return nil
}

func (m *MockApplicationRepository) UpdateStatusByTrip(ctx context.Context, tripID string, from []domain.ApplicationStatus, to domain.ApplicationStatus) error {
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.TripID != tripID {
			continue
		}
		for _, f := range from {
			if app.Status == f {
				app.Status = to
				break
			}
		}
	}
	return nil
}

// GetApplication returns the stored application for test assertions.
func (m *MockApplicationRepository) GetApplication(id string) *domain.Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.apps[id]
}

// byTrip returns copies of all applications on a trip, any status.
func (m *MockApplicationRepository) byTrip(tripID string) []*domain.Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Application
	for _, app := range m.apps {
		if app.TripID == tripID {
			copied := *app
			result = append(result, &copied)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateCallCount int32

	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.UID] = user
	return nil
}

func (m *MockUserRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	m.users[user.UID] = &copied
	return nil
}

func (m *MockUserRepository) MyTrips(ctx context.Context, uid string) ([]domain.TripRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user.MyTrips, nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	CreateCallCount int32
	DeleteCallCount int32

	CreateError error
	DeleteError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(v *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vehicles {
		if existing.LicensePlate == vehicle.LicensePlate {
			return repository.ErrDuplicate
		}
	}
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (m *MockVehicleRepository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, vehicle := range m.vehicles {
		if vehicle.LicensePlate == plate {
			copied := *vehicle
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockVehicleRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Vehicle
	for _, vehicle := range m.vehicles {
		if vehicle.OwnerUID == ownerUID {
			copied := *vehicle
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateCallCount int32

	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, payment := range m.payments {
		if payment.IdempotencyKey == key {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, payment := range m.payments {
		if payment.TripID == tripID {
			copied := *payment
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK TRIP LOCATION STORE
// ──────────────────────────────────────────────

type geoPoint struct {
	lat, lng float64
}

// MockTripLocationStore is an in-memory implementation of the trip geo index.
// Radius filtering uses a simple equirectangular approximation, close enough
// for test distances.
type MockTripLocationStore struct {
	mu           sync.RWMutex
	origins      map[string]geoPoint
	destinations map[string]geoPoint

	IndexCallCount  int32
	RemoveCallCount int32

	IndexError error
	FindError  error
}

// NewMockTripLocationStore creates a new mock trip location store.
func NewMockTripLocationStore() *MockTripLocationStore {
	return &MockTripLocationStore{
		origins:      make(map[string]geoPoint),
		destinations: make(map[string]geoPoint),
	}
}

func (m *MockTripLocationStore) IndexTrip(ctx context.Context, tripID string, originLat, originLng, destLat, destLng float64) error {
	atomic.AddInt32(&m.IndexCallCount, 1)
	if m.IndexError != nil {
		return m.IndexError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origins[tripID] = geoPoint{originLat, originLng}
	m.destinations[tripID] = geoPoint{destLat, destLng}
	return nil
}

func (m *MockTripLocationStore) FindNearOrigin(ctx context.Context, lat, lng, radiusKm float64) ([]redis.TripMatch, error) {
	return m.findNear(m.origins, lat, lng, radiusKm)
}

func (m *MockTripLocationStore) FindNearDestination(ctx context.Context, lat, lng, radiusKm float64) ([]redis.TripMatch, error) {
	return m.findNear(m.destinations, lat, lng, radiusKm)
}

func (m *MockTripLocationStore) RemoveTrip(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.origins, tripID)
	delete(m.destinations, tripID)
	return nil
}

// Indexed reports whether a trip is currently in the geo index.
func (m *MockTripLocationStore) Indexed(tripID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.origins[tripID]
	return ok
}

func (m *MockTripLocationStore) findNear(points map[string]geoPoint, lat, lng, radiusKm float64) ([]redis.TripMatch, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.TripMatch
	for id, p := range points {
		const kmPerDegree = 111.0
		dLat := (p.lat - lat) * kmPerDegree
		dLng := (p.lng - lng) * kmPerDegree
		if dLat*dLat+dLng*dLng <= radiusKm*radiusKm {
			result = append(result, redis.TripMatch{TripID: id, Lat: p.lat, Lng: p.lng})
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the per-trip lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[tripID] {
		return false, nil
	}
	m.locks[tripID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, tripID)
	return nil
}

// Locked reports whether a trip lock is currently held.
func (m *MockLockStore) Locked(tripID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[tripID]
}
