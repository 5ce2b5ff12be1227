package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"uniride/internal/domain"
	"uniride/internal/repository"
)

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	Charge(ctx context.Context, amount float64) (bool, error)
}

// MockPSP is a mock implementation of PSP for testing.
type MockPSP struct{}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge simulates a payment charge. Always succeeds.
func (p *MockPSP) Charge(ctx context.Context, amount float64) (bool, error) {
	return true, nil
}

// PaymentService settles each passenger's fare share when a trip finishes.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	psp         PSP
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, psp PSP) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		psp:         psp,
	}
}

// ProcessPaymentRequest contains the parameters for processing a settlement.
type ProcessPaymentRequest struct {
	TripID string
	UserID string
	Amount float64
}

// ProcessPayment charges a passenger's fare share with idempotency support:
// finishing a trip twice never double-charges.
func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*domain.Payment, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	idempotencyKey := fmt.Sprintf("settlement:%s:%s", req.TripID, req.UserID)

	existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	payment := &domain.Payment{
		ID:             uuid.New().String(),
		TripID:         req.TripID,
		UserID:         req.UserID,
		Amount:         req.Amount,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: idempotencyKey,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	success, err := s.psp.Charge(ctx, req.Amount)
	if err != nil {
		_ = s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed)
		payment.Status = domain.PaymentStatusFailed
		return payment, nil
	}

	status := domain.PaymentStatusFailed
	if success {
		status = domain.PaymentStatusSuccess
	}

	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, status); err != nil {
		return nil, err
	}
	payment.Status = status

	return payment, nil
}

// ListByTrip returns the settlements recorded for a trip.
func (s *PaymentService) ListByTrip(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.paymentRepo.ListByTrip(ctx, tripID)
}
