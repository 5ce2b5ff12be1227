package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniride/internal/domain"
)

func TestCacheStore_TripRoundTrip(t *testing.T) {
	store := NewCacheStore(newTestClient(t))
	ctx := context.Background()

	// Miss before any write.
	got, err := store.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	trip := &domain.Trip{
		ID:        "trip-1",
		DriverUID: "driver-1",
		Driver:    domain.DriverInfo{Name: "Ana Gomez"},
		Vehicle:   domain.VehicleInfo{Model: "Chevrolet Spark", LicensePlate: "ABC123", Capacity: 5},
		Status:    domain.TripStatusOpen,
		Seats:     4,
		Fare:      5000,
		Passengers: []*domain.Application{
			{ID: "app-1", UserID: "p1", RequestedSeats: 1, Status: domain.ApplicationStatusAccepted},
		},
		DepartureAt: time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SetTrip(ctx, trip))

	got, err = store.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, trip, got)
	assert.Equal(t, 3, got.AvailableSeats())
}

func TestCacheStore_InvalidateTrip(t *testing.T) {
	store := NewCacheStore(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, store.SetTrip(ctx, &domain.Trip{ID: "trip-1", Status: domain.TripStatusOpen}))
	require.NoError(t, store.InvalidateTrip(ctx, "trip-1"))

	got, err := store.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheStore_VerifiedSession(t *testing.T) {
	store := NewCacheStore(newTestClient(t))
	ctx := context.Background()

	uid, err := store.VerifiedSessionUID(ctx, "digest-1")
	require.NoError(t, err)
	assert.Empty(t, uid)

	require.NoError(t, store.MarkSessionVerified(ctx, "digest-1", "user-1"))

	uid, err = store.VerifiedSessionUID(ctx, "digest-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}
