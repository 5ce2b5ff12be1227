package domain

import "testing"

func TestAvailableSeats(t *testing.T) {
	t.Parallel()

	trip := &Trip{
		Seats: 3,
		Passengers: []*Application{
			{UserID: "p1", RequestedSeats: 2, Status: ApplicationStatusAccepted},
		},
		Waitlist: []*Application{
			{UserID: "p2", RequestedSeats: 3, Status: ApplicationStatusWaitlist},
		},
	}

	// Waitlist entries do not consume seats.
	if got := trip.AvailableSeats(); got != 1 {
		t.Errorf("expected 1 available seat, got %d", got)
	}
}

func TestAvailableSeats_NeverNegative(t *testing.T) {
	t.Parallel()

	trip := &Trip{
		Seats: 2,
		Passengers: []*Application{
			{RequestedSeats: 2, Status: ApplicationStatusAccepted},
			{RequestedSeats: 1, Status: ApplicationStatusAccepted},
		},
	}
	if got := trip.AvailableSeats(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to TripStatus
		ok       bool
	}{
		{TripStatusOpen, TripStatusInProgress, true},
		{TripStatusOpen, TripStatusClosed, true},
		{TripStatusOpen, TripStatusCancelled, true},
		{TripStatusOpen, TripStatusFinished, false},
		{TripStatusClosed, TripStatusOpen, true},
		{TripStatusClosed, TripStatusInProgress, true},
		{TripStatusClosed, TripStatusCancelled, true},
		{TripStatusClosed, TripStatusFinished, false},
		{TripStatusInProgress, TripStatusFinished, true},
		{TripStatusInProgress, TripStatusCancelled, true},
		{TripStatusInProgress, TripStatusOpen, false},
		{TripStatusFinished, TripStatusCancelled, false},
		{TripStatusCancelled, TripStatusOpen, false},
	}

	for _, tc := range cases {
		trip := &Trip{Status: tc.from}
		if got := trip.CanTransition(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestAcceptsApplications(t *testing.T) {
	t.Parallel()

	open := &Trip{Status: TripStatusOpen, Seats: 2}
	if !open.AcceptsApplications() {
		t.Error("open trip with seats should accept applications")
	}

	full := &Trip{
		Status: TripStatusOpen,
		Seats:  1,
		Passengers: []*Application{
			{RequestedSeats: 1, Status: ApplicationStatusAccepted},
		},
	}
	if full.AcceptsApplications() {
		t.Error("full trip should not accept applications")
	}

	closed := &Trip{Status: TripStatusClosed, Seats: 2}
	if closed.AcceptsApplications() {
		t.Error("closed trip should not accept applications")
	}
}
