package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockStore_AcquireAndContend(t *testing.T) {
	store := NewLockStore(newTestClient(t))
	ctx := context.Background()

	ok, err := store.AcquireTripLock(ctx, "trip-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquire while held fails.
	ok, err = store.AcquireTripLock(ctx, "trip-1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different trip is an independent lock.
	ok, err = store.AcquireTripLock(ctx, "trip-2", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockStore_ReleaseAllowsReacquire(t *testing.T) {
	store := NewLockStore(newTestClient(t))
	ctx := context.Background()

	ok, err := store.AcquireTripLock(ctx, "trip-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.ReleaseTripLock(ctx, "trip-1"))

	ok, err = store.AcquireTripLock(ctx, "trip-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
