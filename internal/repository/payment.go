package repository

import (
	"context"

	"uniride/internal/domain"
)

// PaymentRepository defines the persistence operations for passenger settlements.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIdempotencyKey retrieves a payment by its idempotency key.
	// Returns nil if none exists.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)

	// ListByTrip retrieves all payments recorded for a trip.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Payment, error)

	// UpdateStatus updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}
