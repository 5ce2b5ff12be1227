package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"uniride/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	TripCacheTTL    = 30 * time.Second // Seat availability changes with every accept
	SessionCacheTTL = 5 * time.Minute  // Verified-token cache window
)

// Key prefixes
const (
	tripCachePrefix    = "cache:trip:"
	sessionCachePrefix = "cache:session:"
)

// GetTrip retrieves a trip from cache. Returns nil on cache miss.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip domain.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip, applications included, in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *domain.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip from cache. Called after every
// mutation so readers never see stale seat counts beyond the TTL.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripCachePrefix+tripID).Err()
}

// MarkSessionVerified records that a token digest passed verification, so
// repeated verify calls within the window skip signature checking.
func (s *CacheStore) MarkSessionVerified(ctx context.Context, tokenDigest, uid string) error {
	return s.client.Set(ctx, sessionCachePrefix+tokenDigest, uid, SessionCacheTTL).Err()
}

// VerifiedSessionUID returns the uid for a previously verified token digest,
// or "" on cache miss.
func (s *CacheStore) VerifiedSessionUID(ctx context.Context, tokenDigest string) (string, error) {
	uid, err := s.client.Get(ctx, sessionCachePrefix+tokenDigest).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return uid, nil
}
