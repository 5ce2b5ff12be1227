package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"uniride/internal/auth"
)

// ErrSessionExpired means no usable token exists and the caller must log in
// again.
var ErrSessionExpired = errors.New("session expired, login required")

// refreshThreshold is how close to expiry a token gets proactively refreshed.
const refreshThreshold = 5 * time.Minute

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token in memory. Useful for tests and one-shot
// invocations.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Save("")
}

// FileTokenStore persists the token to a file with user-only permissions.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(token string) error {
	return os.WriteFile(s.Path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// TokenGuard hands out a valid bearer token before every API call, refreshing
// proactively when expiry is near. It talks to the public token endpoints
// directly so it never depends on an authenticated client.
type TokenGuard struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore

	mu sync.Mutex
}

// NewTokenGuard creates a TokenGuard against the given backend base URL.
func NewTokenGuard(baseURL string, store TokenStore) *TokenGuard {
	return &TokenGuard{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
	}
}

// SetToken stores a freshly issued token, typically right after login.
func (g *TokenGuard) SetToken(token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Save(token)
}

// EnsureValidToken returns a non-expired bearer token. Tokens within the
// refresh threshold are exchanged for fresh ones; when the refresh endpoint
// is unreachable the existing token is checked against the verify endpoint
// before being handed out. Returns ErrSessionExpired when nothing usable
// remains.
func (g *TokenGuard) EnsureValidToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	token, err := g.store.Load()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrSessionExpired
	}

	// Expiry comes from an unverified claim decode. Only the backend checks
	// signatures; the client just needs a refresh decision.
	expiresAt, err := auth.DecodeExpiry(token)
	if err != nil {
		return g.verifyOrExpire(ctx, token)
	}

	now := time.Now()
	if now.After(expiresAt) {
		_ = g.store.Clear()
		return "", ErrSessionExpired
	}

	if expiresAt.Sub(now) > refreshThreshold {
		return token, nil
	}

	fresh, err := g.refresh(ctx, token)
	if err == nil {
		if saveErr := g.store.Save(fresh); saveErr != nil {
			return "", saveErr
		}
		return fresh, nil
	}

	// Refresh failed but the token is not expired yet. Verify it still
	// stands before using it for the remaining window.
	return g.verifyOrExpire(ctx, token)
}

func (g *TokenGuard) refresh(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/token/refresh", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrSessionExpired
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrSessionExpired
	}
	return out.Token, nil
}

func (g *TokenGuard) verifyOrExpire(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/token/verify", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_ = g.store.Clear()
		return "", ErrSessionExpired
	}

	return token, nil
}
