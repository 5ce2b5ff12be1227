package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"uniride/internal/domain"
	"uniride/internal/service"
)

// ──────────────────────────────────────────────
// PUBLISH
// ──────────────────────────────────────────────

func TestPublish_CreatesOpenIndexedTrip(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")

	trip, err := f.trips.Publish(context.Background(), service.PublishTripRequest{
		DriverUID:   "d1",
		Origin:      domain.Location{Address: "Campus", Lat: 4.6371, Lng: -74.0838},
		Destination: domain.Location{Address: "Centro", Lat: 4.5981, Lng: -74.0760},
		DepartureAt: time.Now().Add(3 * time.Hour),
		Seats:       3,
		Fare:        4500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusOpen {
		t.Errorf("expected open trip, got %s", trip.Status)
	}
	if trip.Vehicle.LicensePlate != "ABC123" {
		t.Errorf("expected vehicle snapshot, got %+v", trip.Vehicle)
	}
	if trip.Driver.Name == "" {
		t.Error("expected driver snapshot")
	}
	if !f.location.Indexed(trip.ID) {
		t.Error("expected trip in geo index")
	}
}

func TestPublish_RequiresVehicle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedPassenger("p1")

	_, err := f.trips.Publish(context.Background(), service.PublishTripRequest{
		DriverUID:   "p1",
		Origin:      domain.Location{Address: "Campus", Lat: 4.6371, Lng: -74.0838},
		Destination: domain.Location{Address: "Centro", Lat: 4.5981, Lng: -74.0760},
		DepartureAt: time.Now().Add(3 * time.Hour),
		Seats:       3,
		Fare:        4500,
	})
	if !errors.Is(err, service.ErrNoVehicle) {
		t.Errorf("expected ErrNoVehicle, got %v", err)
	}
}

func TestPublish_SeatsMustFitVehicle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1") // capacity 5, so at most 4 offered seats

	_, err := f.trips.Publish(context.Background(), service.PublishTripRequest{
		DriverUID:   "d1",
		Origin:      domain.Location{Address: "Campus", Lat: 4.6371, Lng: -74.0838},
		Destination: domain.Location{Address: "Centro", Lat: 4.5981, Lng: -74.0760},
		DepartureAt: time.Now().Add(3 * time.Hour),
		Seats:       5,
		Fare:        4500,
	})
	if !errors.Is(err, service.ErrSeatsExceedCapacity) {
		t.Errorf("expected ErrSeatsExceedCapacity, got %v", err)
	}
}

func TestPublish_PastDepartureRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")

	_, err := f.trips.Publish(context.Background(), service.PublishTripRequest{
		DriverUID:   "d1",
		Origin:      domain.Location{Address: "Campus", Lat: 4.6371, Lng: -74.0838},
		Destination: domain.Location{Address: "Centro", Lat: 4.5981, Lng: -74.0760},
		DepartureAt: time.Now().Add(-time.Hour),
		Seats:       3,
	})
	if !errors.Is(err, service.ErrInvalidDeparture) {
		t.Errorf("expected ErrInvalidDeparture, got %v", err)
	}
}

func TestPublish_ZeroFareGetsSuggestion(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")

	trip, err := f.trips.Publish(context.Background(), service.PublishTripRequest{
		DriverUID:   "d1",
		Origin:      domain.Location{Address: "Campus", Lat: 4.6371, Lng: -74.0838},
		Destination: domain.Location{Address: "Centro", Lat: 4.5981, Lng: -74.0760},
		DepartureAt: time.Now().Add(3 * time.Hour),
		Seats:       3,
		Fare:        0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Fare <= 0 {
		t.Errorf("expected a suggested fare, got %v", trip.Fare)
	}
}

// ──────────────────────────────────────────────
// SEARCH
// ──────────────────────────────────────────────

func TestSearch_MatchesBothEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedTrip("match", "d1", 3)

	// Same origin area, opposite direction.
	other := f.seedTrip("reverse", "d1", 3)
	_ = f.location.IndexTrip(nil, other.ID,
		other.Origin.Lat, other.Origin.Lng,
		10.0, 10.0,
	)

	trips, err := f.trips.Search(context.Background(), service.SearchRequest{
		FromLat: 4.6371, FromLng: -74.0838,
		ToLat: 4.5981, ToLng: -74.0760,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trips) != 1 || trips[0].ID != "match" {
		t.Fatalf("expected only the matching trip, got %d results", len(trips))
	}
}

func TestSearch_ExcludesOwnTrips(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedTrip("trip-1", "d1", 3)

	trips, err := f.trips.Search(context.Background(), service.SearchRequest{
		FromLat: 4.6371, FromLng: -74.0838,
		ToLat: 4.5981, ToLng: -74.0760,
		ViewerUID: "d1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("expected own trip excluded, got %d results", len(trips))
	}
}

func TestSearch_HonorsDepartureWindow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	trip := f.seedTrip("trip-1", "d1", 3)

	window := service.SearchRequest{
		FromLat: 4.6371, FromLng: -74.0838,
		ToLat: 4.5981, ToLng: -74.0760,
		WindowStart: trip.DepartureAt.Add(time.Hour),
		WindowEnd:   trip.DepartureAt.Add(2 * time.Hour),
	}
	trips, err := f.trips.Search(context.Background(), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("expected trip outside window excluded, got %d results", len(trips))
	}
}

func TestSearch_FullTripsHidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	f.seedTrip("trip-1", "d1", 2)
	f.seedApplication("app-1", "trip-1", "p1", 2, domain.ApplicationStatusAccepted)

	trips, err := f.trips.Search(context.Background(), service.SearchRequest{
		FromLat: 4.6371, FromLng: -74.0838,
		ToLat: 4.5981, ToLng: -74.0760,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("expected full trip hidden, got %d results", len(trips))
	}
}

func TestAll_OnlyOpenUpcomingWithSeats(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedTrip("open", "d1", 3)
	closed := f.seedTrip("closed", "d1", 3)
	closed.Status = domain.TripStatusClosed

	trips, err := f.trips.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != "open" {
		t.Fatalf("expected only the open trip, got %d results", len(trips))
	}
}

// ──────────────────────────────────────────────
// LIFECYCLE TRANSITIONS
// ──────────────────────────────────────────────

func TestStart_MovesPassengersAndCancelsWaitlist(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	f.seedPassenger("p2")
	f.seedTrip("trip-1", "d1", 3)
	f.seedApplication("app-1", "trip-1", "p1", 1, domain.ApplicationStatusAccepted)
	f.seedApplication("app-2", "trip-1", "p2", 1, domain.ApplicationStatusWaitlist)

	trip, err := f.trips.Start(context.Background(), "trip-1", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusInProgress {
		t.Errorf("expected in_progress, got %s", trip.Status)
	}
	if got := f.appRepo.GetApplication("app-1").Status; got != domain.ApplicationStatusInProgress {
		t.Errorf("expected passenger in_progress, got %s", got)
	}
	// Pending waitlist entries die when the vehicle leaves.
	if got := f.appRepo.GetApplication("app-2").Status; got != domain.ApplicationStatusCancelled {
		t.Errorf("expected waitlist entry cancelled, got %s", got)
	}
	if f.location.Indexed("trip-1") {
		t.Error("expected trip removed from geo index")
	}
}

func TestStart_ClosedTripNeedsPassengers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	trip := f.seedTrip("trip-1", "d1", 2)
	trip.Status = domain.TripStatusClosed

	_, err := f.trips.Start(context.Background(), "trip-1", "d1")
	if !errors.Is(err, service.ErrNoPassengers) {
		t.Errorf("expected ErrNoPassengers, got %v", err)
	}
}

func TestStart_OnlyDriver(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedTrip("trip-1", "d1", 3)

	_, err := f.trips.Start(context.Background(), "trip-1", "p1")
	if !errors.Is(err, service.ErrNotTripDriver) {
		t.Errorf("expected ErrNotTripDriver, got %v", err)
	}
}

func TestFinish_SettlesEachPassenger(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	f.seedPassenger("p2")
	trip := f.seedTrip("trip-1", "d1", 3)
	trip.Status = domain.TripStatusInProgress
	trip.Fare = 5000
	f.seedApplication("app-1", "trip-1", "p1", 2, domain.ApplicationStatusInProgress)
	f.seedApplication("app-2", "trip-1", "p2", 1, domain.ApplicationStatusInProgress)

	result, err := f.trips.Finish(context.Background(), "trip-1", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Trip.Status != domain.TripStatusFinished {
		t.Errorf("expected finished, got %s", result.Trip.Status)
	}
	if len(result.Receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(result.Receipts))
	}
	if f.paymentRepo.CountPayments() != 2 {
		t.Errorf("expected 2 payments, got %d", f.paymentRepo.CountPayments())
	}

	// Fare share is fare x seats.
	var total float64
	for _, r := range result.Receipts {
		total += r.Total
	}
	if total != 15000 {
		t.Errorf("expected 15000 settled, got %v", total)
	}

	// The finished trip still reports who rode, matching its receipts.
	if len(result.Trip.Passengers) != 2 {
		t.Fatalf("expected 2 passengers on finished trip, got %d", len(result.Trip.Passengers))
	}
	for _, p := range result.Trip.Passengers {
		if p.Status != domain.ApplicationStatusFinished {
			t.Errorf("expected finished passenger entry, got %s", p.Status)
		}
	}
}

func TestFinish_OnlyFromInProgress(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedTrip("trip-1", "d1", 3)

	_, err := f.trips.Finish(context.Background(), "trip-1", "d1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancel_WithdrawsActiveApplications(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	f.seedPassenger("p2")
	f.seedTrip("trip-1", "d1", 3)
	f.seedApplication("app-1", "trip-1", "p1", 1, domain.ApplicationStatusAccepted)
	f.seedApplication("app-2", "trip-1", "p2", 1, domain.ApplicationStatusWaitlist)

	trip, err := f.trips.Cancel(context.Background(), "trip-1", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected cancelled, got %s", trip.Status)
	}
	for _, id := range []string{"app-1", "app-2"} {
		if got := f.appRepo.GetApplication(id).Status; got != domain.ApplicationStatusCancelled {
			t.Errorf("expected %s cancelled, got %s", id, got)
		}
	}
}

func TestCancel_TerminalTripRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	trip := f.seedTrip("trip-1", "d1", 3)
	trip.Status = domain.TripStatusFinished

	_, err := f.trips.Cancel(context.Background(), "trip-1", "d1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestFinish_DoubleSettlementPreventedByIdempotencyKey(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	trip := f.seedTrip("trip-1", "d1", 3)
	trip.Status = domain.TripStatusInProgress
	f.seedApplication("app-1", "trip-1", "p1", 1, domain.ApplicationStatusInProgress)

	if _, err := f.trips.Finish(context.Background(), "trip-1", "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second finish fails the transition, and even a direct re-settlement
	// reuses the recorded payment.
	payments := service.NewPaymentService(f.paymentRepo, service.NewMockPSP())
	first, err := payments.ProcessPayment(context.Background(), service.ProcessPaymentRequest{
		TripID: "trip-1", UserID: "p1", Amount: 5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.paymentRepo.CountPayments() != 1 {
		t.Errorf("expected 1 payment, got %d", f.paymentRepo.CountPayments())
	}
	if first.Status != domain.PaymentStatusSuccess {
		t.Errorf("expected SUCCESS, got %s", first.Status)
	}
}

func TestCancel_LockedTripRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	f.seedTrip("trip-1", "d1", 3)
	f.seedApplication("app-1", "trip-1", "p1", 1, domain.ApplicationStatusWaitlist)

	// A concurrent accept holds the per-trip lock; the cancel must not
	// slip in between its check and its commit.
	locked, _ := f.locks.AcquireTripLock(context.Background(), "trip-1", 0)
	if !locked {
		t.Fatal("setup: lock not acquired")
	}

	_, err := f.trips.Cancel(context.Background(), "trip-1", "d1")
	if !errors.Is(err, service.ErrTripBusy) {
		t.Errorf("expected ErrTripBusy, got %v", err)
	}

	trip, _ := f.tripRepo.GetByID(context.Background(), "trip-1")
	if trip.Status != domain.TripStatusOpen {
		t.Errorf("expected trip still open, got %s", trip.Status)
	}
}

func TestStart_ReleasesLock(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	f.seedTrip("trip-1", "d1", 3)
	f.seedApplication("app-1", "trip-1", "p1", 1, domain.ApplicationStatusAccepted)

	if _, err := f.trips.Start(context.Background(), "trip-1", "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.locks.Locked("trip-1") {
		t.Error("expected trip lock released")
	}
}

func TestFinish_LockedTripRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.seedPassenger("p1")
	trip := f.seedTrip("trip-1", "d1", 3)
	trip.Status = domain.TripStatusInProgress
	f.seedApplication("app-1", "trip-1", "p1", 1, domain.ApplicationStatusInProgress)

	locked, _ := f.locks.AcquireTripLock(context.Background(), "trip-1", 0)
	if !locked {
		t.Fatal("setup: lock not acquired")
	}

	_, err := f.trips.Finish(context.Background(), "trip-1", "d1")
	if !errors.Is(err, service.ErrTripBusy) {
		t.Errorf("expected ErrTripBusy, got %v", err)
	}
}
