package service

import (
	"context"
	"math"

	"uniride/internal/domain"
	"uniride/internal/redis"
)

// FareService suggests a per-seat fare for a route based on its length and
// how many open trips already serve the same corridor.
type FareService struct {
	locationStore redis.TripLocationStoreInterface
}

// NewFareService creates a new FareService.
func NewFareService(locationStore redis.TripLocationStoreInterface) *FareService {
	return &FareService{locationStore: locationStore}
}

// FareConfig contains fare suggestion parameters, in COP.
type FareConfig struct {
	BaseFare     float64 // flat component per seat
	PerKmRate    float64 // per-kilometer component
	MinimumFare  float64
	ScarcityBump float64 // multiplier when few trips serve the corridor
	CorridorKm   float64 // radius used to count competing trips
}

// DefaultFareConfig returns the default fare parameters.
func DefaultFareConfig() FareConfig {
	return FareConfig{
		BaseFare:     2000,
		PerKmRate:    800,
		MinimumFare:  3000,
		ScarcityBump: 1.25,
		CorridorKm:   3.0,
	}
}

// Suggest computes a suggested per-seat fare for the route.
func (s *FareService) Suggest(ctx context.Context, origin, destination domain.Location) float64 {
	config := DefaultFareConfig()

	distanceKm := haversineKm(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	fare := config.BaseFare + distanceKm*config.PerKmRate

	// Few competing trips on the corridor nudges the suggestion up.
	if s.countCorridorTrips(ctx, origin, config.CorridorKm) < 2 {
		fare *= config.ScarcityBump
	}

	if fare < config.MinimumFare {
		fare = config.MinimumFare
	}

	// Round to the nearest 100 COP.
	return math.Round(fare/100) * 100
}

func (s *FareService) countCorridorTrips(ctx context.Context, origin domain.Location, radiusKm float64) int {
	if s.locationStore == nil {
		return 0
	}

	matches, err := s.locationStore.FindNearOrigin(ctx, origin.Lat, origin.Lng, radiusKm)
	if err != nil {
		return 0
	}
	return len(matches)
}

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
