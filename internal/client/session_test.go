package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAPI_LoginStoresToken(t *testing.T) {
	issued := issueToken(t, time.Hour)
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		// Public endpoint: no bearer header even with a guard configured.
		assert.Empty(t, r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(Session{
			User:  User{UID: "user-1", Email: "user1@uni.edu.co"},
			Token: issued,
		})
	})

	store := NewMemoryTokenStore("stale-token")
	guard := NewTokenGuard(srv.URL, store)
	api := NewAccountAPI(New(srv.URL, guard), guard)

	session, err := api.Login(context.Background(), "user1@uni.edu.co", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.User.UID)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, issued, saved)
}

func TestAccountAPI_LogoutClearsToken(t *testing.T) {
	store := NewMemoryTokenStore(issueToken(t, time.Hour))
	guard := NewTokenGuard("http://localhost:0", store)
	api := NewAccountAPI(New("http://localhost:0", guard), guard)

	require.NoError(t, api.Logout())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRoleMode_SwitchIsNonBlockingAndGatesPublish(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]Vehicle{
			"vehicles": {{VehicleID: "v-1", LicensePlate: "ABC123"}},
		})
	})
	vehicles := NewVehicleAPI(newTestClientFor(t, srv))
	mode := NewRoleMode(vehicles)

	assert.Equal(t, RolePassenger, mode.Role())
	assert.False(t, mode.CanPublish())

	mode.Switch(context.Background(), RoleDriver)
	assert.Equal(t, RoleDriver, mode.Role())

	// The background refresh lands eventually.
	require.Eventually(t, mode.CanPublish, time.Second, 10*time.Millisecond)

	mode.Switch(context.Background(), RolePassenger)
	assert.False(t, mode.CanPublish())
}

func TestRoleMode_RevalidateErrorKeepsPreviousKnowledge(t *testing.T) {
	fail := false
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "boom", "code": "internal"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string][]Vehicle{
			"vehicles": {{VehicleID: "v-1"}},
		})
	})
	vehicles := NewVehicleAPI(newTestClientFor(t, srv))
	mode := NewRoleMode(vehicles)
	ctx := context.Background()

	mode.Switch(ctx, RoleDriver)
	require.NoError(t, mode.Revalidate(ctx))
	require.True(t, mode.CanPublish())

	fail = true
	require.Error(t, mode.Revalidate(ctx))
	assert.True(t, mode.CanPublish())
}

func TestRoleMode_NoVehiclesBlocksPublish(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]Vehicle{"vehicles": {}})
	})
	vehicles := NewVehicleAPI(newTestClientFor(t, srv))
	mode := NewRoleMode(vehicles)
	ctx := context.Background()

	mode.Switch(ctx, RoleDriver)
	require.NoError(t, mode.Revalidate(ctx))
	assert.False(t, mode.CanPublish())
}
