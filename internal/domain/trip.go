package domain

import "time"

// TripStatus represents the lifecycle state of a published trip.
type TripStatus string

const (
	// TripStatusOpen means the trip is published and accepting applications.
	TripStatusOpen TripStatus = "open"
	// TripStatusClosed means every offered seat is taken; the trip is still
	// upcoming and can start or be cancelled, but no application can be accepted.
	TripStatusClosed TripStatus = "closed"
	// TripStatusInProgress means the driver has started the trip.
	TripStatusInProgress TripStatus = "in_progress"
	// TripStatusFinished is terminal.
	TripStatusFinished TripStatus = "finished"
	// TripStatusCancelled is terminal.
	TripStatusCancelled TripStatus = "cancelled"
)

// Location is a resolved address with coordinates.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// DriverInfo is the driver snapshot denormalized into a trip.
type DriverInfo struct {
	Name  string
	Photo string
}

// VehicleInfo is the vehicle snapshot denormalized into a trip.
type VehicleInfo struct {
	Model        string
	LicensePlate string
	Capacity     int
}

// Trip represents a driver-published ride offer with fixed seats, fare and schedule.
type Trip struct {
	ID          string
	DriverUID   string
	Driver      DriverInfo
	Vehicle     VehicleInfo
	Origin      Location
	Destination Location
	DepartureAt time.Time
	Seats       int
	Fare        float64
	Status      TripStatus
	Waitlist    []*Application
	Passengers  []*Application
	CreatedAt   time.Time
}

// AvailableSeats returns the seats still open for acceptance. It is derived
// from the accepted passenger segments, never stored.
func (t *Trip) AvailableSeats() int {
	taken := 0
	for _, p := range t.Passengers {
		taken += p.RequestedSeats
	}
	if taken > t.Seats {
		return 0
	}
	return t.Seats - taken
}

// Terminal reports whether the trip reached a terminal state.
func (t *Trip) Terminal() bool {
	return t.Status == TripStatusFinished || t.Status == TripStatusCancelled
}

// AcceptsApplications reports whether new applications may join the waitlist.
func (t *Trip) AcceptsApplications() bool {
	return t.Status == TripStatusOpen && t.AvailableSeats() > 0
}

// ApplicationBy returns the application filed by the given user, from either
// the waitlist or the passenger list, or nil.
func (t *Trip) ApplicationBy(userID string) *Application {
	for _, a := range t.Waitlist {
		if a.UserID == userID {
			return a
		}
	}
	for _, p := range t.Passengers {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// CanTransition reports whether the trip may move to the target status.
//
//	open        -> in_progress | cancelled | closed (seats exhausted)
//	closed      -> open (seat freed) | in_progress | cancelled
//	in_progress -> finished | cancelled
func (t *Trip) CanTransition(to TripStatus) bool {
	switch t.Status {
	case TripStatusOpen:
		return to == TripStatusInProgress || to == TripStatusCancelled || to == TripStatusClosed
	case TripStatusClosed:
		return to == TripStatusOpen || to == TripStatusInProgress || to == TripStatusCancelled
	case TripStatusInProgress:
		return to == TripStatusFinished || to == TripStatusCancelled
	default:
		return false
	}
}

// ApplicationStatus represents the state of a passenger's request to join a trip.
type ApplicationStatus string

const (
	// ApplicationStatusWaitlist means the request is pending driver review.
	ApplicationStatusWaitlist ApplicationStatus = "waitlist"
	// ApplicationStatusAccepted means the driver confirmed the passenger.
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusInProgress mirrors the trip entering in_progress.
	ApplicationStatusInProgress ApplicationStatus = "in_progress"
	// ApplicationStatusFinished mirrors the trip finishing.
	ApplicationStatusFinished ApplicationStatus = "finished"
	// ApplicationStatusCancelled means the entry was withdrawn or removed.
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
)

// Active reports whether the application still occupies a slot on the trip
// (pending or confirmed).
func (s ApplicationStatus) Active() bool {
	return s == ApplicationStatusWaitlist || s == ApplicationStatusAccepted || s == ApplicationStatusInProgress
}

// Application is a passenger's request to join a trip. The passenger may ask
// for a pickup and drop different from the trip's own endpoints.
type Application struct {
	ID             string
	TripID         string
	UserID         string
	Passenger      PassengerInfo
	Origin         Location
	Destination    Location
	RequestedSeats int
	Status         ApplicationStatus
	AppliedAt      time.Time
}

// PassengerInfo is the passenger snapshot denormalized into an application.
type PassengerInfo struct {
	Name  string
	Phone string
	Photo string
}
