package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	tripOriginKey      = "trips:origins"
	tripDestinationKey = "trips:destinations"
)

// TripMatch is a trip whose endpoint fell inside a search radius.
type TripMatch struct {
	TripID string
	Lat    float64
	Lng    float64
}

// TripLocationStore indexes trip endpoints in Redis GEO sets so that searches
// can resolve the route envelope without scanning the trips table.
type TripLocationStore struct {
	client *redis.Client
}

// NewTripLocationStore creates a new TripLocationStore.
func NewTripLocationStore(client *redis.Client) *TripLocationStore {
	return &TripLocationStore{client: client}
}

// IndexTrip stores both endpoints of a trip using GEOADD.
func (s *TripLocationStore) IndexTrip(ctx context.Context, tripID string, originLat, originLng, destLat, destLng float64) error {
	if err := s.client.GeoAdd(ctx, tripOriginKey, &redis.GeoLocation{
		Name:      tripID,
		Longitude: originLng,
		Latitude:  originLat,
	}).Err(); err != nil {
		return err
	}

	return s.client.GeoAdd(ctx, tripDestinationKey, &redis.GeoLocation{
		Name:      tripID,
		Longitude: destLng,
		Latitude:  destLat,
	}).Err()
}

// FindNearOrigin returns trips whose origin lies within radiusKm of the point.
func (s *TripLocationStore) FindNearOrigin(ctx context.Context, lat, lng, radiusKm float64) ([]TripMatch, error) {
	return s.findNear(ctx, tripOriginKey, lat, lng, radiusKm)
}

// FindNearDestination returns trips whose destination lies within radiusKm of the point.
func (s *TripLocationStore) FindNearDestination(ctx context.Context, lat, lng, radiusKm float64) ([]TripMatch, error) {
	return s.findNear(ctx, tripDestinationKey, lat, lng, radiusKm)
}

// RemoveTrip removes a trip from both geo indexes. Called when the trip
// leaves the open state.
func (s *TripLocationStore) RemoveTrip(ctx context.Context, tripID string) error {
	if err := s.client.ZRem(ctx, tripOriginKey, tripID).Err(); err != nil {
		return err
	}
	return s.client.ZRem(ctx, tripDestinationKey, tripID).Err()
}

func (s *TripLocationStore) findNear(ctx context.Context, key string, lat, lng, radiusKm float64) ([]TripMatch, error) {
	results, err := s.client.GeoRadius(ctx, key, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]TripMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, TripMatch{
			TripID: r.Name,
			Lat:    r.Latitude,
			Lng:    r.Longitude,
		})
	}

	return matches, nil
}
