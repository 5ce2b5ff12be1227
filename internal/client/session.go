package client

import (
	"context"
	"net/http"
	"sync"
)

// AccountAPI is the typed account surface of the SDK.
type AccountAPI struct {
	c     *Client
	guard *TokenGuard
}

// NewAccountAPI creates the account API surface over a Client. The guard
// receives tokens issued by login and registration.
func NewAccountAPI(c *Client, guard *TokenGuard) *AccountAPI {
	return &AccountAPI{c: c, guard: guard}
}

// RegisterRequest contains the parameters for creating an account.
type RegisterRequest struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	City      string `json:"city,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Register creates an account and stores the issued token in the guard.
func (a *AccountAPI) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var session Session
	// Registration is public; bypass the guard by issuing through a bare
	// client so a stale stored token cannot block a new signup.
	public := New(a.c.baseURL, nil, WithHTTPClient(a.c.httpClient))
	if err := public.do(ctx, http.MethodPost, "/api/register", nil, req, &session, ""); err != nil {
		return nil, err
	}

	if a.guard != nil {
		if err := a.guard.SetToken(session.Token); err != nil {
			return nil, err
		}
	}
	return &session, nil
}

// Login authenticates and stores the issued token in the guard.
func (a *AccountAPI) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	public := New(a.c.baseURL, nil, WithHTTPClient(a.c.httpClient))
	body := map[string]string{"email": email, "password": password}
	if err := public.do(ctx, http.MethodPost, "/api/login", nil, body, &session, ""); err != nil {
		return nil, err
	}

	if a.guard != nil {
		if err := a.guard.SetToken(session.Token); err != nil {
			return nil, err
		}
	}
	return &session, nil
}

// Logout drops the stored token.
func (a *AccountAPI) Logout() error {
	if a.guard == nil {
		return nil
	}
	return a.guard.SetToken("")
}

// Me fetches the caller's profile including their trip history.
func (a *AccountAPI) Me(ctx context.Context) (*User, error) {
	var user User
	if err := a.c.do(ctx, http.MethodGet, "/api/me", nil, nil, &user, ""); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileRequest contains the editable profile fields. Omitted fields
// keep their stored values.
type UpdateProfileRequest struct {
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Photo          string `json:"photo,omitempty"`
	City           string `json:"city,omitempty"`
	Address        string `json:"address,omitempty"`
	NearbyLandmark string `json:"nearby_landmark,omitempty"`
}

// UpdateProfile applies profile changes and returns the updated profile.
func (a *AccountAPI) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var user User
	if err := a.c.do(ctx, http.MethodPatch, "/api/me", nil, req, &user, ""); err != nil {
		return nil, err
	}
	return &user, nil
}

// Role is the acting mode of the session. It is local state, not a persisted
// account attribute; a user can act in either mode.
type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// RoleMode is the driver/passenger acting-mode toggle. Switching to driver
// refreshes the vehicle list in the background; the toggle itself never
// blocks. Publishing a trip is gated on having at least one vehicle.
type RoleMode struct {
	vehicles *VehicleAPI

	mu       sync.Mutex
	role     Role
	hasFleet bool
}

// NewRoleMode creates a RoleMode starting in passenger mode.
func NewRoleMode(vehicles *VehicleAPI) *RoleMode {
	return &RoleMode{vehicles: vehicles, role: RolePassenger}
}

// Role returns the current acting mode.
func (m *RoleMode) Role() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

// Switch changes the acting mode. Entering driver mode kicks off a background
// revalidation of the vehicle list; errors there leave the previous fleet
// knowledge in place.
func (m *RoleMode) Switch(ctx context.Context, role Role) {
	m.mu.Lock()
	m.role = role
	m.mu.Unlock()

	if role != RoleDriver {
		return
	}

	go func() {
		vehicles, err := m.vehicles.List(ctx)
		if err != nil {
			return
		}
		m.mu.Lock()
		m.hasFleet = len(vehicles) > 0
		m.mu.Unlock()
	}()
}

// Revalidate synchronously refreshes the fleet gate. Used where the caller
// needs a definite answer, e.g. right before showing the publish form.
func (m *RoleMode) Revalidate(ctx context.Context) error {
	vehicles, err := m.vehicles.List(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.hasFleet = len(vehicles) > 0
	m.mu.Unlock()
	return nil
}

// CanPublish reports whether the publish action is available: driver mode
// with at least one registered vehicle.
func (m *RoleMode) CanPublish() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role == RoleDriver && m.hasFleet
}
