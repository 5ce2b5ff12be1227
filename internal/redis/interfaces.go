package redis

import (
	"context"
	"time"
)

// TripLocationStoreInterface defines the interface for trip geo-index operations.
type TripLocationStoreInterface interface {
	IndexTrip(ctx context.Context, tripID string, originLat, originLng, destLat, destLng float64) error
	FindNearOrigin(ctx context.Context, lat, lng, radiusKm float64) ([]TripMatch, error)
	FindNearDestination(ctx context.Context, lat, lng, radiusKm float64) ([]TripMatch, error)
	RemoveTrip(ctx context.Context, tripID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TripLocationStoreInterface = (*TripLocationStore)(nil)
	_ LockStoreInterface         = (*LockStore)(nil)
)
