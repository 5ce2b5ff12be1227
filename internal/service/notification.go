package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"uniride/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationApplicationReceived      NotificationType = "APPLICATION_RECEIVED"
	NotificationApplicationAccepted      NotificationType = "APPLICATION_ACCEPTED"
	NotificationPassengerRemoved         NotificationType = "PASSENGER_REMOVED"
	NotificationParticipationCancelled   NotificationType = "PARTICIPATION_CANCELLED"
	NotificationTripStarted              NotificationType = "TRIP_STARTED"
	NotificationTripFinished             NotificationType = "TRIP_FINISHED"
	NotificationTripCancelled            NotificationType = "TRIP_CANCELLED"
	NotificationReceiptReady             NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real deployment this would hold push/SMS/email clients.
	// The current implementation logs deliveries.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyApplicationReceived tells the driver a passenger joined the waitlist.
func (s *NotificationService) NotifyApplicationReceived(ctx context.Context, trip *domain.Trip, app *domain.Application) error {
	return s.send(ctx, Notification{
		Type:        NotificationApplicationReceived,
		RecipientID: trip.DriverUID,
		Title:       "New Application",
		Message:     fmt.Sprintf("%s requested %d seat(s) on your trip", app.Passenger.Name, app.RequestedSeats),
		Data: map[string]interface{}{
			"trip_id":         trip.ID,
			"user_id":         app.UserID,
			"requested_seats": app.RequestedSeats,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyApplicationAccepted tells a passenger the driver accepted them.
func (s *NotificationService) NotifyApplicationAccepted(ctx context.Context, trip *domain.Trip, userID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationApplicationAccepted,
		RecipientID: userID,
		Title:       "Application Accepted",
		Message:     fmt.Sprintf("You have a seat on the trip to %s", trip.Destination.Address),
		Data: map[string]interface{}{
			"trip_id":      trip.ID,
			"departure_at": trip.DepartureAt,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPassengerRemoved tells a passenger the driver removed them.
func (s *NotificationService) NotifyPassengerRemoved(ctx context.Context, trip *domain.Trip, userID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationPassengerRemoved,
		RecipientID: userID,
		Title:       "Removed From Trip",
		Message:     fmt.Sprintf("The driver removed you from the trip to %s", trip.Destination.Address),
		Data:        map[string]interface{}{"trip_id": trip.ID},
		CreatedAt:   time.Now(),
	})
}

// NotifyParticipationCancelled tells the driver a passenger withdrew.
func (s *NotificationService) NotifyParticipationCancelled(ctx context.Context, trip *domain.Trip, userID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationParticipationCancelled,
		RecipientID: trip.DriverUID,
		Title:       "Passenger Withdrew",
		Message:     "A passenger cancelled their participation",
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"user_id": userID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripStarted tells a passenger the trip is underway.
func (s *NotificationService) NotifyTripStarted(ctx context.Context, trip *domain.Trip, userID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripStarted,
		RecipientID: userID,
		Title:       "Trip Started",
		Message:     "Your trip has started",
		Data:        map[string]interface{}{"trip_id": trip.ID},
		CreatedAt:   time.Now(),
	})
}

// NotifyTripFinished tells a passenger the trip finished and what they owe.
func (s *NotificationService) NotifyTripFinished(ctx context.Context, trip *domain.Trip, userID string, amount float64) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripFinished,
		RecipientID: userID,
		Title:       "Trip Finished",
		Message:     fmt.Sprintf("Trip finished. Your share is $%.0f", amount),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"amount":  amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCancelled tells an applicant or passenger the trip was cancelled.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip, userID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCancelled,
		RecipientID: userID,
		Title:       "Trip Cancelled",
		Message:     fmt.Sprintf("The trip to %s was cancelled by the driver", trip.Destination.Address),
		Data:        map[string]interface{}{"trip_id": trip.ID},
		CreatedAt:   time.Now(),
	})
}

// NotifyReceiptReady tells a passenger their receipt is available.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *Receipt) error {
	return s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.UserID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Receipt for %d seat(s): $%.0f", receipt.Seats, receipt.Total),
		Data: map[string]interface{}{
			"trip_id":    receipt.TripID,
			"receipt_id": receipt.ID,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification. Currently logs; swap for a push provider.
func (s *NotificationService) send(ctx context.Context, n Notification) error {
	n.ID = uuid.New().String()
	log.Printf("[notification] type=%s recipient=%s title=%q message=%q", n.Type, n.RecipientID, n.Title, n.Message)
	return nil
}
