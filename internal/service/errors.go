package service

import "errors"

var (
	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidSeats is returned when a seat count is zero or negative.
	ErrInvalidSeats = errors.New("invalid seat count")

	// ErrInvalidFare is returned when the fare is negative.
	ErrInvalidFare = errors.New("invalid fare")

	// ErrInvalidDeparture is returned when the departure time is missing or past.
	ErrInvalidDeparture = errors.New("invalid departure time")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidPlate is returned when a license plate fails validation.
	ErrInvalidPlate = errors.New("invalid license plate")

	// ErrInvalidPhone is returned when a phone number fails validation.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrSOATRequired is returned when a vehicle is registered without its
	// insurance document.
	ErrSOATRequired = errors.New("soat document required")

	// ErrNoVehicle is returned when a driver action requires a registered vehicle.
	ErrNoVehicle = errors.New("no registered vehicle")

	// ErrLastVehicle is returned when deleting would leave the driver without
	// the minimum of one remaining vehicle.
	ErrLastVehicle = errors.New("cannot delete the last registered vehicle")

	// ErrNotVehicleOwner is returned when a user mutates a vehicle they do not own.
	ErrNotVehicleOwner = errors.New("vehicle belongs to another user")

	// ErrSeatsExceedCapacity is returned when a trip offers more seats than
	// the vehicle holds.
	ErrSeatsExceedCapacity = errors.New("seats exceed vehicle capacity")

	// ErrOwnTrip is returned when a driver applies to their own trip.
	ErrOwnTrip = errors.New("cannot apply to own trip")

	// ErrAlreadyApplied is returned when the user already holds an active
	// application on the trip.
	ErrAlreadyApplied = errors.New("already applied to this trip")

	// ErrTripNotOpen is returned when applying to a trip that is not accepting
	// applications.
	ErrTripNotOpen = errors.New("trip is not open for applications")

	// ErrSeatConflict is returned when requested seats exceed the seats available.
	ErrSeatConflict = errors.New("not enough seats available")

	// ErrNotTripDriver is returned when a lifecycle or waitlist action comes
	// from someone other than the trip's driver.
	ErrNotTripDriver = errors.New("action restricted to the trip driver")

	// ErrInvalidTransition is returned when a lifecycle transition is not
	// allowed from the trip's current status.
	ErrInvalidTransition = errors.New("invalid trip status transition")

	// ErrNoPassengers is returned when starting a trip that has no confirmed
	// passengers from the closed state.
	ErrNoPassengers = errors.New("trip has no confirmed passengers")

	// ErrNotOnWaitlist is returned when accepting a user who holds no pending
	// application.
	ErrNotOnWaitlist = errors.New("user is not on the waitlist")

	// ErrNotPassenger is returned when removing a user who is not a confirmed
	// passenger.
	ErrNotPassenger = errors.New("user is not a confirmed passenger")

	// ErrParticipationLocked is returned when a passenger tries to leave a
	// trip that already finished or was cancelled.
	ErrParticipationLocked = errors.New("participation can no longer be cancelled")

	// ErrTripBusy is returned when the trip's seat-mutation lock is held by a
	// concurrent operation.
	ErrTripBusy = errors.New("trip is being modified, retry")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrPlateTaken is returned when registering a plate already in use.
	ErrPlateTaken = errors.New("license plate already registered")

	// ErrInvalidPaymentAmount is returned when payment amount is invalid.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")
)
