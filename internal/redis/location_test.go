package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redisclient.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestTripLocationStore_IndexAndFind(t *testing.T) {
	store := NewTripLocationStore(newTestClient(t))
	ctx := context.Background()

	// Campus -> city center, roughly 4.5 km apart.
	err := store.IndexTrip(ctx, "trip-1", 4.6371, -74.0838, 4.5981, -74.0760)
	require.NoError(t, err)

	// Same origin area, destination far north.
	err = store.IndexTrip(ctx, "trip-2", 4.6400, -74.0850, 4.8000, -74.0500)
	require.NoError(t, err)

	origins, err := store.FindNearOrigin(ctx, 4.6371, -74.0838, 2)
	require.NoError(t, err)
	assert.Len(t, origins, 2)

	dests, err := store.FindNearDestination(ctx, 4.5981, -74.0760, 2)
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, "trip-1", dests[0].TripID)
	assert.InDelta(t, 4.5981, dests[0].Lat, 0.001)
	assert.InDelta(t, -74.0760, dests[0].Lng, 0.001)
}

func TestTripLocationStore_FindNearOrigin_RadiusExcludes(t *testing.T) {
	store := NewTripLocationStore(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, store.IndexTrip(ctx, "trip-1", 4.6371, -74.0838, 4.5981, -74.0760))

	// Search centered ~20 km away with a small radius.
	matches, err := store.FindNearOrigin(ctx, 4.8200, -74.0500, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTripLocationStore_RemoveTrip(t *testing.T) {
	store := NewTripLocationStore(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, store.IndexTrip(ctx, "trip-1", 4.6371, -74.0838, 4.5981, -74.0760))
	require.NoError(t, store.RemoveTrip(ctx, "trip-1"))

	origins, err := store.FindNearOrigin(ctx, 4.6371, -74.0838, 2)
	require.NoError(t, err)
	assert.Empty(t, origins)

	dests, err := store.FindNearDestination(ctx, 4.5981, -74.0760, 2)
	require.NoError(t, err)
	assert.Empty(t, dests)
}
