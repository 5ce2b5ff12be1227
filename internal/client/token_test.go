package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// issueToken signs a token directly so tests can mint already-expired ones;
// the production issuer refuses non-positive lifetimes.
func issueToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestTokenGuard_FarFromExpiryReturnsTokenWithoutRequests(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	token := issueToken(t, time.Hour)
	guard := NewTokenGuard(srv.URL, NewMemoryTokenStore(token))

	got, err := guard.EnsureValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, got)
	assert.Zero(t, atomic.LoadInt32(&requests))
}

func TestTokenGuard_NearExpiryRefreshes(t *testing.T) {
	fresh := issueToken(t, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token/refresh", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": fresh})
	}))
	defer srv.Close()

	old := issueToken(t, 2*time.Minute) // inside the 5-minute threshold
	store := NewMemoryTokenStore(old)
	guard := NewTokenGuard(srv.URL, store)

	got, err := guard.EnsureValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	// The refreshed token was persisted.
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, fresh, saved)
}

func TestTokenGuard_RefreshFailureFallsBackToVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/refresh":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/api/token/verify":
			require.NotEmpty(t, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	token := issueToken(t, 2*time.Minute)
	guard := NewTokenGuard(srv.URL, NewMemoryTokenStore(token))

	got, err := guard.EnsureValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestTokenGuard_ExpiredTokenClearsAndFails(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	token := issueToken(t, -time.Minute)
	store := NewMemoryTokenStore(token)
	guard := NewTokenGuard(srv.URL, store)

	_, err := guard.EnsureValidToken(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, atomic.LoadInt32(&requests))

	saved, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, saved)
}

func TestTokenGuard_EmptyStoreFails(t *testing.T) {
	guard := NewTokenGuard("http://localhost:0", NewMemoryTokenStore(""))

	_, err := guard.EnsureValidToken(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestTokenGuard_MalformedTokenVerifyRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token/verify", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewMemoryTokenStore("not-a-jwt")
	guard := NewTokenGuard(srv.URL, store)

	_, err := guard.EnsureValidToken(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	saved, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, saved)
}

func TestFileTokenStore_RoundTrip(t *testing.T) {
	store := &FileTokenStore{Path: t.TempDir() + "/token"}

	// Missing file reads as empty, not as an error.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc.def.ghi"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // idempotent

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
