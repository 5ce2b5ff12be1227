package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uniride/internal/repository"
	"uniride/internal/service"
)

// ErrorResponse represents an error response. Code is machine-readable so
// clients never have to pattern-match the human message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	status, code := mapError(err)
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapError maps service/repository errors to an HTTP status and an error code.
func mapError(err error) (int, string) {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID):
		return http.StatusBadRequest, "invalid_trip_id"
	case errors.Is(err, service.ErrInvalidUserID):
		return http.StatusBadRequest, "invalid_user_id"
	case errors.Is(err, service.ErrInvalidVehicleID):
		return http.StatusBadRequest, "invalid_vehicle_id"
	case errors.Is(err, service.ErrInvalidSeats):
		return http.StatusBadRequest, "invalid_seats"
	case errors.Is(err, service.ErrInvalidFare):
		return http.StatusBadRequest, "invalid_fare"
	case errors.Is(err, service.ErrInvalidDeparture):
		return http.StatusBadRequest, "invalid_departure"
	case errors.Is(err, service.ErrInvalidLocation):
		return http.StatusBadRequest, "invalid_location"
	case errors.Is(err, service.ErrInvalidPlate):
		return http.StatusBadRequest, "invalid_plate"
	case errors.Is(err, service.ErrInvalidPhone):
		return http.StatusBadRequest, "invalid_phone"
	case errors.Is(err, service.ErrSOATRequired):
		return http.StatusBadRequest, "soat_required"
	case errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidPaymentID):
		return http.StatusBadRequest, "invalid_payment"

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyApplied):
		return http.StatusConflict, "already_applied"
	case errors.Is(err, service.ErrSeatConflict):
		return http.StatusConflict, "seat_conflict"
	case errors.Is(err, service.ErrTripNotOpen):
		return http.StatusConflict, "trip_not_open"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrNoPassengers):
		return http.StatusConflict, "no_passengers"
	case errors.Is(err, service.ErrParticipationLocked):
		return http.StatusConflict, "participation_locked"
	case errors.Is(err, service.ErrLastVehicle):
		return http.StatusConflict, "last_vehicle"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, service.ErrPlateTaken):
		return http.StatusConflict, "plate_taken"
	case errors.Is(err, service.ErrTripBusy):
		return http.StatusConflict, "trip_busy"

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrOwnTrip):
		return http.StatusForbidden, "own_trip"
	case errors.Is(err, service.ErrNotTripDriver):
		return http.StatusForbidden, "not_trip_driver"
	case errors.Is(err, service.ErrNotVehicleOwner):
		return http.StatusForbidden, "not_vehicle_owner"
	case errors.Is(err, service.ErrNoVehicle):
		return http.StatusForbidden, "no_vehicle"
	case errors.Is(err, service.ErrNotOnWaitlist):
		return http.StatusUnprocessableEntity, "not_on_waitlist"
	case errors.Is(err, service.ErrNotPassenger):
		return http.StatusUnprocessableEntity, "not_passenger"

	// Authentication
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"

	// Default to internal server error
	default:
		return http.StatusInternalServerError, "internal"
	}
}
