package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"uniride/internal/domain"
)

// Receipt summarizes one passenger's share of a finished trip.
type Receipt struct {
	ID            string
	TripID        string
	UserID        string
	Passenger     string
	Seats         int
	FarePerSeat   float64
	Total         float64
	DistanceKm    float64
	PaymentStatus domain.PaymentStatus
	CreatedAt     time.Time
}

// ReceiptService generates per-passenger receipts.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{notificationService: notificationService}
}

// GenerateReceiptRequest contains the parameters for generating a receipt.
type GenerateReceiptRequest struct {
	Trip        *domain.Trip
	Application *domain.Application
	Payment     *domain.Payment
}

// Generate builds a receipt for one passenger of a finished trip.
func (s *ReceiptService) Generate(ctx context.Context, req GenerateReceiptRequest) (*Receipt, error) {
	if req.Trip == nil {
		return nil, ErrInvalidTripID
	}
	if req.Application == nil {
		return nil, ErrInvalidUserID
	}

	paymentStatus := domain.PaymentStatusPending
	if req.Payment != nil {
		paymentStatus = req.Payment.Status
	}

	receipt := &Receipt{
		ID:          uuid.New().String(),
		TripID:      req.Trip.ID,
		UserID:      req.Application.UserID,
		Passenger:   req.Application.Passenger.Name,
		Seats:       req.Application.RequestedSeats,
		FarePerSeat: req.Trip.Fare,
		Total:       req.Trip.Fare * float64(req.Application.RequestedSeats),
		DistanceKm: haversineKm(
			req.Application.Origin.Lat, req.Application.Origin.Lng,
			req.Application.Destination.Lat, req.Application.Destination.Lng,
		),
		PaymentStatus: paymentStatus,
		CreatedAt:     time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}
