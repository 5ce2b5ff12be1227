package repository

import (
	"context"

	"uniride/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByUID retrieves a user by account UID.
	GetByUID(ctx context.Context, uid string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update persists profile changes.
	Update(ctx context.Context, user *domain.User) error

	// MyTrips returns the normalized trip references for a user, newest first.
	MyTrips(ctx context.Context, uid string) ([]domain.TripRef, error)
}
