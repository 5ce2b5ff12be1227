package domain

// PaymentStatus represents the current status of a settlement.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment represents a passenger's fare settlement for a finished trip:
// the trip fare multiplied by the seats the passenger occupied.
type Payment struct {
	ID             string
	TripID         string
	UserID         string
	Amount         float64
	Status         PaymentStatus
	IdempotencyKey string
}
