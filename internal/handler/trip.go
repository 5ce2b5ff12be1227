package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"uniride/internal/domain"
	"uniride/internal/middleware"
	"uniride/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService    *service.TripService
	bookingService *service.BookingService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, bookingService *service.BookingService) *TripHandler {
	return &TripHandler{
		tripService:    tripService,
		bookingService: bookingService,
	}
}

// LocationPayload is a resolved address with coordinates on the wire.
type LocationPayload struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// ApplicationPayload is a waitlist or passenger entry on the wire.
type ApplicationPayload struct {
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Photo          string          `json:"photo,omitempty"`
	Origin         LocationPayload `json:"origin"`
	Destination    LocationPayload `json:"destination"`
	RequestedSeats int             `json:"requested_seats"`
	Status         string          `json:"status"`
	AppliedAt      string          `json:"applied_at"`
}

// TripPayload is the full trip representation on the wire.
type TripPayload struct {
	TripID         string               `json:"trip_id"`
	DriverUID      string               `json:"driver_uid"`
	DriverName     string               `json:"driver_name"`
	DriverPhoto    string               `json:"driver_photo,omitempty"`
	VehicleModel   string               `json:"vehicle_model"`
	VehiclePlate   string               `json:"vehicle_plate"`
	Start          LocationPayload      `json:"start"`
	Destination    LocationPayload      `json:"destination"`
	Time           string               `json:"time"`
	Seats          int                  `json:"seats"`
	AvailableSeats int                  `json:"available_seats"`
	Fare           float64              `json:"fare"`
	Status         string               `json:"status"`
	Waitlist       []ApplicationPayload `json:"waitlist"`
	PassengerList  []ApplicationPayload `json:"passenger_list"`
	CreatedAt      string               `json:"created_at"`
}

// ReceiptPayload is a settlement receipt on the wire.
type ReceiptPayload struct {
	ReceiptID     string  `json:"receipt_id"`
	UserID        string  `json:"user_id"`
	Passenger     string  `json:"passenger"`
	Seats         int     `json:"seats"`
	FarePerSeat   float64 `json:"fare_per_seat"`
	Total         float64 `json:"total"`
	DistanceKm    float64 `json:"distance_km"`
	PaymentStatus string  `json:"payment_status"`
}

func toLocationPayload(l domain.Location) LocationPayload {
	return LocationPayload{Address: l.Address, Lat: l.Lat, Lng: l.Lng}
}

func toApplicationPayloads(apps []*domain.Application) []ApplicationPayload {
	out := make([]ApplicationPayload, 0, len(apps))
	for _, a := range apps {
		out = append(out, ApplicationPayload{
			UserID:         a.UserID,
			Name:           a.Passenger.Name,
			Phone:          a.Passenger.Phone,
			Photo:          a.Passenger.Photo,
			Origin:         toLocationPayload(a.Origin),
			Destination:    toLocationPayload(a.Destination),
			RequestedSeats: a.RequestedSeats,
			Status:         string(a.Status),
			AppliedAt:      a.AppliedAt.Format(time.RFC3339),
		})
	}
	return out
}

func toTripPayload(t *domain.Trip) TripPayload {
	return TripPayload{
		TripID:         t.ID,
		DriverUID:      t.DriverUID,
		DriverName:     t.Driver.Name,
		DriverPhoto:    t.Driver.Photo,
		VehicleModel:   t.Vehicle.Model,
		VehiclePlate:   t.Vehicle.LicensePlate,
		Start:          toLocationPayload(t.Origin),
		Destination:    toLocationPayload(t.Destination),
		Time:           t.DepartureAt.Format(time.RFC3339),
		Seats:          t.Seats,
		AvailableSeats: t.AvailableSeats(),
		Fare:           t.Fare,
		Status:         string(t.Status),
		Waitlist:       toApplicationPayloads(t.Waitlist),
		PassengerList:  toApplicationPayloads(t.Passengers),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
}

func toTripPayloads(trips []*domain.Trip) []TripPayload {
	out := make([]TripPayload, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripPayload(t))
	}
	return out
}

// CreateTripRequest is the HTTP request body for publishing a trip.
type CreateTripRequest struct {
	VehicleID   string          `json:"vehicle_id,omitempty"`
	Start       LocationPayload `json:"start" binding:"required"`
	Destination LocationPayload `json:"destination" binding:"required"`
	Time        string          `json:"time" binding:"required"`
	Seats       int             `json:"seats" binding:"required"`
	Fare        float64         `json:"fare"`
}

// CreateTripResponse is the HTTP response for publishing a trip.
type CreateTripResponse struct {
	TripID string      `json:"trip_id"`
	Trip   TripPayload `json:"trip"`
}

// CreateTrip handles POST /api/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "time must be RFC 3339", Code: "invalid_departure"})
		return
	}

	trip, err := h.tripService.Publish(c.Request.Context(), service.PublishTripRequest{
		DriverUID:   middleware.UID(c),
		VehicleID:   req.VehicleID,
		Origin:      domain.Location{Address: req.Start.Address, Lat: req.Start.Lat, Lng: req.Start.Lng},
		Destination: domain.Location{Address: req.Destination.Address, Lat: req.Destination.Lat, Lng: req.Destination.Lng},
		DepartureAt: departure,
		Seats:       req.Seats,
		Fare:        req.Fare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateTripResponse{TripID: trip.ID, Trip: toTripPayload(trip)})
}

// GetTrip handles GET /api/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripPayload(trip))
}

// ListTrips handles GET /api/trips
//
// Query modes, checked in order:
//
//	ids=a,b,c                         fetch specific trips
//	mine=true                         trips published by the caller
//	all=true                          every open upcoming trip with seats
//	fromLat/fromLng/toLat/toLng+date  geo search inside the departure day window
func (h *TripHandler) ListTrips(c *gin.Context) {
	ctx := c.Request.Context()

	if ids := c.Query("ids"); ids != "" {
		trips, err := h.tripService.ByIDs(ctx, strings.Split(ids, ","))
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, gin.H{"trips": toTripPayloads(trips)})
		return
	}

	if c.Query("mine") == "true" {
		trips, err := h.tripService.ListByDriver(ctx, middleware.UID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, gin.H{"trips": toTripPayloads(trips)})
		return
	}

	if c.Query("all") == "true" {
		trips, err := h.tripService.All(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, gin.H{"trips": toTripPayloads(trips)})
		return
	}

	req, err := parseSearchQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_search"})
		return
	}
	req.ViewerUID = middleware.UID(c)

	trips, err := h.tripService.Search(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"trips": toTripPayloads(trips)})
}

// UpdateTripRequest is the HTTP request body for PATCH /api/trips/:id. The
// action field selects the operation; the rest apply per action.
type UpdateTripRequest struct {
	Action         string           `json:"action" binding:"required"`
	UserID         string           `json:"user_id,omitempty"`
	RequestedSeats int              `json:"requested_seats,omitempty"`
	Origin         *LocationPayload `json:"origin,omitempty"`
	Destination    *LocationPayload `json:"destination,omitempty"`
}

// UpdateTripResponse is the HTTP response for PATCH /api/trips/:id.
type UpdateTripResponse struct {
	Message  string           `json:"message"`
	Trip     TripPayload      `json:"trip"`
	Receipts []ReceiptPayload `json:"receipts,omitempty"`
}

// UpdateTrip handles PATCH /api/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	tripID := c.Param("id")
	callerUID := middleware.UID(c)

	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	ctx := c.Request.Context()

	var (
		trip     *domain.Trip
		receipts []ReceiptPayload
		message  string
		err      error
	)

	switch req.Action {
	case "apply":
		apply := service.ApplyRequest{
			TripID:         tripID,
			UserID:         callerUID,
			RequestedSeats: req.RequestedSeats,
		}
		if req.Origin != nil {
			apply.Origin = domain.Location{Address: req.Origin.Address, Lat: req.Origin.Lat, Lng: req.Origin.Lng}
		}
		if req.Destination != nil {
			apply.Destination = domain.Location{Address: req.Destination.Address, Lat: req.Destination.Lat, Lng: req.Destination.Lng}
		}
		trip, err = h.bookingService.Apply(ctx, apply)
		message = "application filed"

	case "accept":
		trip, err = h.bookingService.Accept(ctx, tripID, callerUID, req.UserID)
		message = "passenger accepted"

	case "remove_passenger":
		trip, err = h.bookingService.RemovePassenger(ctx, tripID, callerUID, req.UserID)
		message = "passenger removed"

	case "cancel_passenger":
		trip, err = h.bookingService.CancelParticipation(ctx, tripID, callerUID)
		message = "participation cancelled"

	case "start_trip":
		trip, err = h.tripService.Start(ctx, tripID, callerUID)
		message = "trip started"

	case "finish_trip":
		var result *service.FinishTripResponse
		result, err = h.tripService.Finish(ctx, tripID, callerUID)
		if err == nil {
			trip = result.Trip
			receipts = toReceiptPayloads(result.Receipts)
		}
		message = "trip finished"

	case "cancel":
		trip, err = h.tripService.Cancel(ctx, tripID, callerUID)
		message = "trip cancelled"

	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown action: " + req.Action, Code: "unknown_action"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UpdateTripResponse{
		Message:  message,
		Trip:     toTripPayload(trip),
		Receipts: receipts,
	})
}

func toReceiptPayloads(receipts []*service.Receipt) []ReceiptPayload {
	out := make([]ReceiptPayload, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, ReceiptPayload{
			ReceiptID:     r.ID,
			UserID:        r.UserID,
			Passenger:     r.Passenger,
			Seats:         r.Seats,
			FarePerSeat:   r.FarePerSeat,
			Total:         r.Total,
			DistanceKm:    r.DistanceKm,
			PaymentStatus: string(r.PaymentStatus),
		})
	}
	return out
}
