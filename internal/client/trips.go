package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Client-side precondition errors. Requests that would fail these never reach
// the network.
var (
	ErrMissingSearchParams = errors.New("origin, destination and date are required")
	ErrMissingTripID       = errors.New("trip has no id")
	ErrSeatsUnavailable    = errors.New("requested seats exceed available seats")
	ErrOwnTrip             = errors.New("cannot apply to your own trip")
	ErrAlreadyApplied      = errors.New("already applied to this trip")
	ErrNotAccepted         = errors.New("no active participation on this trip")
	ErrTripOver            = errors.New("trip already finished or cancelled")
	ErrNoPassengers        = errors.New("trip has no confirmed passengers")
	ErrNoVehicles          = errors.New("register a vehicle before publishing trips")
)

// SearchParams describes a trip search. From, To and Date are mandatory;
// a zero value on any of them suppresses the request entirely.
type SearchParams struct {
	FromLat, FromLng float64
	ToLat, ToLng     float64
	Date             string // YYYY-MM-DD
	Time             string // HH:MM, optional
	RadiusKm         float64
}

func (p SearchParams) complete() bool {
	return p.Date != "" &&
		(p.FromLat != 0 || p.FromLng != 0) &&
		(p.ToLat != 0 || p.ToLng != 0)
}

// TripAPI is the typed trip surface of the SDK.
type TripAPI struct {
	c *Client

	// The filtered and "all trips" result sets are cached independently so
	// switching views never triggers a refetch.
	mu       sync.Mutex
	filtered []Trip
	all      []Trip
}

// NewTripAPI creates the trip API surface over a Client.
func NewTripAPI(c *Client) *TripAPI {
	return &TripAPI{c: c}
}

// Search queries open trips matching the route and date. Incomplete params
// clear the cached filtered set and return nil without issuing a request.
func (a *TripAPI) Search(ctx context.Context, params SearchParams) ([]Trip, error) {
	if !params.complete() {
		a.mu.Lock()
		a.filtered = nil
		a.mu.Unlock()
		return nil, nil
	}

	q := url.Values{}
	q.Set("fromLat", strconv.FormatFloat(params.FromLat, 'f', -1, 64))
	q.Set("fromLng", strconv.FormatFloat(params.FromLng, 'f', -1, 64))
	q.Set("toLat", strconv.FormatFloat(params.ToLat, 'f', -1, 64))
	q.Set("toLng", strconv.FormatFloat(params.ToLng, 'f', -1, 64))
	q.Set("date", params.Date)
	if params.Time != "" {
		q.Set("time", params.Time)
	}
	if params.RadiusKm > 0 {
		q.Set("radiusKm", strconv.FormatFloat(params.RadiusKm, 'f', -1, 64))
	}

	var resp tripListResponse
	if err := a.c.do(ctx, http.MethodGet, "/api/trips", q, nil, &resp, ""); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.filtered = resp.Trips
	a.mu.Unlock()
	return resp.Trips, nil
}

// All fetches every open upcoming trip and caches the set separately from
// filtered search results.
func (a *TripAPI) All(ctx context.Context) ([]Trip, error) {
	q := url.Values{}
	q.Set("all", "true")

	var resp tripListResponse
	if err := a.c.do(ctx, http.MethodGet, "/api/trips", q, nil, &resp, ""); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.all = resp.Trips
	a.mu.Unlock()
	return resp.Trips, nil
}

// Cached returns the last fetched filtered and all-trips sets without any
// network traffic.
func (a *TripAPI) Cached() (filtered, all []Trip) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filtered, a.all
}

// Mine fetches the trips published by the caller.
func (a *TripAPI) Mine(ctx context.Context) ([]Trip, error) {
	q := url.Values{}
	q.Set("mine", "true")

	var resp tripListResponse
	if err := a.c.do(ctx, http.MethodGet, "/api/trips", q, nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Trips, nil
}

// ByIDs fetches specific trips, typically the ones in the user's history.
func (a *TripAPI) ByIDs(ctx context.Context, ids []string) ([]Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var resp tripListResponse
	if err := a.c.do(ctx, http.MethodGet, "/api/trips", q, nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Trips, nil
}

// Get fetches one trip.
func (a *TripAPI) Get(ctx context.Context, tripID string) (*Trip, error) {
	if tripID == "" {
		return nil, ErrMissingTripID
	}

	var trip Trip
	if err := a.c.do(ctx, http.MethodGet, "/api/trips/"+tripID, nil, nil, &trip, ""); err != nil {
		return nil, err
	}
	return &trip, nil
}

// PublishRequest contains the parameters for publishing a trip.
type PublishRequest struct {
	VehicleID   string   `json:"vehicle_id,omitempty"`
	Start       Location `json:"start"`
	Destination Location `json:"destination"`
	Time        string   `json:"time"`
	Seats       int      `json:"seats"`
	Fare        float64  `json:"fare,omitempty"`
}

// Publish creates a new trip and returns it. Drivers without a registered
// vehicle are stopped here, before any trip request goes out.
func (a *TripAPI) Publish(ctx context.Context, req PublishRequest) (*Trip, error) {
	vehicles, err := NewVehicleAPI(a.c).List(ctx)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, ErrNoVehicles
	}

	var resp struct {
		TripID string `json:"trip_id"`
		Trip   Trip   `json:"trip"`
	}
	if err := a.c.do(ctx, http.MethodPost, "/api/trips", nil, req, &resp, uuid.New().String()); err != nil {
		return nil, err
	}
	return &resp.Trip, nil
}

// Apply files an application for seats on the trip. Preconditions are checked
// locally first: the trip must have an id, must not be the caller's own, must
// have enough seats, and the caller must not already be on it. Violations
// return an error without a request being sent.
func (a *TripAPI) Apply(ctx context.Context, trip *Trip, callerUID string, seats int, origin, destination *Location) (*Trip, error) {
	if trip == nil || trip.TripID == "" {
		return nil, ErrMissingTripID
	}
	if trip.DriverUID == callerUID {
		return nil, ErrOwnTrip
	}
	if seats <= 0 || seats > trip.AvailableSeats {
		return nil, ErrSeatsUnavailable
	}
	if trip.ApplicationBy(callerUID) != nil {
		return nil, ErrAlreadyApplied
	}

	body := map[string]any{
		"action":          "apply",
		"requested_seats": seats,
	}
	if origin != nil {
		body["origin"] = origin
	}
	if destination != nil {
		body["destination"] = destination
	}

	return a.mutate(ctx, trip.TripID, body)
}

// Accept promotes a waitlist entry to the passenger list. Driver side.
func (a *TripAPI) Accept(ctx context.Context, tripID, userUID string) (*Trip, error) {
	if tripID == "" {
		return nil, ErrMissingTripID
	}
	return a.mutate(ctx, tripID, map[string]any{
		"action":  "accept",
		"user_id": userUID,
	})
}

// RemovePassenger removes a confirmed passenger, freeing their seats.
func (a *TripAPI) RemovePassenger(ctx context.Context, tripID, userUID string) (*Trip, error) {
	if tripID == "" {
		return nil, ErrMissingTripID
	}
	return a.mutate(ctx, tripID, map[string]any{
		"action":  "remove_passenger",
		"user_id": userUID,
	})
}

// Start begins the trip. A trip whose seats all sold out (status closed) can
// start only with confirmed passengers, which the backend enforces; the
// client rejects the obvious empty case up front.
func (a *TripAPI) Start(ctx context.Context, trip *Trip) (*Trip, error) {
	if trip == nil || trip.TripID == "" {
		return nil, ErrMissingTripID
	}
	if trip.Status == "closed" && len(trip.PassengerList) == 0 {
		return nil, ErrNoPassengers
	}
	return a.mutate(ctx, trip.TripID, map[string]any{"action": "start_trip"})
}

// FinishResult is the outcome of finishing a trip.
type FinishResult struct {
	Trip     Trip
	Receipts []Receipt
}

// Finish completes an in-progress trip and returns the settlement receipts.
func (a *TripAPI) Finish(ctx context.Context, tripID string) (*FinishResult, error) {
	if tripID == "" {
		return nil, ErrMissingTripID
	}

	var resp tripMutationResponse
	body := map[string]any{"action": "finish_trip"}
	if err := a.c.do(ctx, http.MethodPatch, "/api/trips/"+tripID, nil, body, &resp, uuid.New().String()); err != nil {
		return nil, err
	}
	a.updateCached(&resp.Trip)
	return &FinishResult{Trip: resp.Trip, Receipts: resp.Receipts}, nil
}

// Cancel cancels the trip entirely.
func (a *TripAPI) Cancel(ctx context.Context, tripID string) (*Trip, error) {
	if tripID == "" {
		return nil, ErrMissingTripID
	}
	return a.mutate(ctx, tripID, map[string]any{"action": "cancel"})
}

// CancelParticipation withdraws the caller's own waitlist or passenger entry.
// Locally rejected when the caller has no active entry or the trip already
// ended.
func (a *TripAPI) CancelParticipation(ctx context.Context, trip *Trip, callerUID string) (*Trip, error) {
	if trip == nil || trip.TripID == "" {
		return nil, ErrMissingTripID
	}
	if trip.Status == "finished" || trip.Status == "cancelled" {
		return nil, ErrTripOver
	}
	entry := trip.ApplicationBy(callerUID)
	if entry == nil || (entry.Status != "waitlist" && entry.Status != "accepted") {
		return nil, ErrNotAccepted
	}
	return a.mutate(ctx, trip.TripID, map[string]any{"action": "cancel_passenger"})
}

// mutate issues one action-discriminated PATCH and returns the updated trip
// from the response. Every mutation carries a fresh idempotency key so a
// double-click or a network retry cannot apply twice.
func (a *TripAPI) mutate(ctx context.Context, tripID string, body map[string]any) (*Trip, error) {
	var resp tripMutationResponse
	if err := a.c.do(ctx, http.MethodPatch, "/api/trips/"+tripID, nil, body, &resp, uuid.New().String()); err != nil {
		return nil, err
	}
	a.updateCached(&resp.Trip)
	return &resp.Trip, nil
}

// updateCached splices an updated trip into the filtered and all result sets,
// so cached views reflect a mutation without a refetch.
func (a *TripAPI) updateCached(trip *Trip) {
	if trip.TripID == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.filtered {
		if a.filtered[i].TripID == trip.TripID {
			a.filtered[i] = *trip
		}
	}
	for i := range a.all {
		if a.all[i].TripID == trip.TripID {
			a.all[i] = *trip
		}
	}
}
