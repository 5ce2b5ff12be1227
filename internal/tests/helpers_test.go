package tests

import (
	"time"

	"uniride/internal/domain"
	"uniride/internal/service"
)

// fixture wires the full service stack over in-memory mocks.
type fixture struct {
	tripRepo    *MockTripRepository
	appRepo     *MockApplicationRepository
	userRepo    *MockUserRepository
	vehicleRepo *MockVehicleRepository
	paymentRepo *MockPaymentRepository
	location    *MockTripLocationStore
	locks       *MockLockStore

	trips    *service.TripService
	booking  *service.BookingService
	vehicles *service.VehicleService
}

func newFixture() *fixture {
	f := &fixture{
		appRepo:     NewMockApplicationRepository(),
		userRepo:    NewMockUserRepository(),
		vehicleRepo: NewMockVehicleRepository(),
		paymentRepo: NewMockPaymentRepository(),
		location:    NewMockTripLocationStore(),
		locks:       NewMockLockStore(),
	}
	f.tripRepo = NewMockTripRepository(f.appRepo)

	notifications := service.NewNotificationService()
	receipts := service.NewReceiptService(notifications)
	fares := service.NewFareService(f.location)
	payments := service.NewPaymentService(f.paymentRepo, service.NewMockPSP())

	f.trips = service.NewTripService(
		nil, f.tripRepo, f.appRepo, f.userRepo, f.vehicleRepo,
		f.locks, f.location, nil,
		fares, payments, receipts, notifications,
	)
	f.booking = service.NewBookingService(
		nil, f.tripRepo, f.appRepo, f.userRepo,
		f.locks, f.location, nil,
		notifications,
	)
	f.vehicles = service.NewVehicleService(f.vehicleRepo, f.userRepo)

	return f
}

// seedDriver registers a user with one vehicle.
func (f *fixture) seedDriver(uid string) {
	f.userRepo.AddUser(&domain.User{
		UID:       uid,
		UserID:    "2020" + uid,
		FirstName: "Driver",
		LastName:  uid,
		Email:     uid + "@uni.edu.co",
		Phone:     "3001234567",
		IsDriver:  true,
	})
	f.vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:           "vehicle-" + uid,
		OwnerUID:     uid,
		LicensePlate: "ABC123",
		Model:        "Mazda 3",
		Capacity:     5,
		SOATURL:      "https://files.test/soat.pdf",
	})
}

// seedPassenger registers a plain user.
func (f *fixture) seedPassenger(uid string) {
	f.userRepo.AddUser(&domain.User{
		UID:       uid,
		UserID:    "2021" + uid,
		FirstName: "Rider",
		LastName:  uid,
		Email:     uid + "@uni.edu.co",
		Phone:     "3109876543",
	})
}

// seedTrip stores an open trip with the given seats and indexes it.
func (f *fixture) seedTrip(id, driverUID string, seats int) *domain.Trip {
	trip := &domain.Trip{
		ID:        id,
		DriverUID: driverUID,
		Origin:    domain.Location{Address: "Campus", Lat: 4.6371, Lng: -74.0838},
		Destination: domain.Location{
			Address: "Centro", Lat: 4.5981, Lng: -74.0760,
		},
		DepartureAt: time.Now().Add(6 * time.Hour),
		Seats:       seats,
		Fare:        5000,
		Status:      domain.TripStatusOpen,
		CreatedAt:   time.Now(),
	}
	f.tripRepo.AddTrip(trip)
	_ = f.location.IndexTrip(nil, trip.ID,
		trip.Origin.Lat, trip.Origin.Lng,
		trip.Destination.Lat, trip.Destination.Lng,
	)
	return trip
}

// seedApplication stores an application with the given status.
func (f *fixture) seedApplication(id, tripID, userID string, seats int, status domain.ApplicationStatus) *domain.Application {
	app := &domain.Application{
		ID:             id,
		TripID:         tripID,
		UserID:         userID,
		RequestedSeats: seats,
		Status:         status,
		AppliedAt:      time.Now(),
	}
	f.appRepo.AddApplication(app)
	return app
}
