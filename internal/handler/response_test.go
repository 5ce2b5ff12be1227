package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"uniride/internal/repository"
	"uniride/internal/service"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{repository.ErrNotFound, http.StatusNotFound, "not_found"},
		{service.ErrInvalidSeats, http.StatusBadRequest, "invalid_seats"},
		{service.ErrInvalidPlate, http.StatusBadRequest, "invalid_plate"},
		{service.ErrAlreadyApplied, http.StatusConflict, "already_applied"},
		{service.ErrSeatConflict, http.StatusConflict, "seat_conflict"},
		{service.ErrTripNotOpen, http.StatusConflict, "trip_not_open"},
		{service.ErrTripBusy, http.StatusConflict, "trip_busy"},
		{service.ErrLastVehicle, http.StatusConflict, "last_vehicle"},
		{service.ErrOwnTrip, http.StatusForbidden, "own_trip"},
		{service.ErrNotTripDriver, http.StatusForbidden, "not_trip_driver"},
		{service.ErrNoVehicle, http.StatusForbidden, "no_vehicle"},
		{service.ErrNotOnWaitlist, http.StatusUnprocessableEntity, "not_on_waitlist"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{errors.New("something unexpected"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code := mapError(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("mapError(%v) = %d %q, want %d %q", tt.err, status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestMapErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("accepting application: %w", service.ErrSeatConflict)

	status, code := mapError(wrapped)
	if status != http.StatusConflict || code != "seat_conflict" {
		t.Errorf("mapError(wrapped) = %d %q, want %d %q", status, code, http.StatusConflict, "seat_conflict")
	}
}
