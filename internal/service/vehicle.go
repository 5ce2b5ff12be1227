package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"uniride/internal/domain"
	"uniride/internal/repository"
)

// VehicleService handles vehicle registration and the business rules around it.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicleRepo repository.VehicleRepository, userRepo repository.UserRepository) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, userRepo: userRepo}
}

// RegisterVehicleRequest contains the parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	OwnerUID     string
	LicensePlate string
	Model        string
	Capacity     int
	SOATURL      string
	PhotoURL     string
}

// Register validates and persists a new vehicle. The plate is normalized
// before validation, so "abc 123" registers as "ABC123". Registering a first
// vehicle flags the owner as a driver.
func (s *VehicleService) Register(ctx context.Context, req RegisterVehicleRequest) (*domain.Vehicle, error) {
	if req.OwnerUID == "" {
		return nil, ErrInvalidUserID
	}

	plate := domain.NormalizePlate(req.LicensePlate)
	if !domain.ValidPlate(plate) {
		return nil, ErrInvalidPlate
	}
	if req.Capacity < 2 {
		// A carpool vehicle needs the driver's seat plus at least one more.
		return nil, ErrInvalidSeats
	}
	if req.SOATURL == "" {
		return nil, ErrSOATRequired
	}

	owner, err := s.userRepo.GetByUID(ctx, req.OwnerUID)
	if err != nil {
		return nil, err
	}

	vehicle := &domain.Vehicle{
		ID:           uuid.New().String(),
		OwnerUID:     req.OwnerUID,
		LicensePlate: plate,
		Model:        req.Model,
		Capacity:     req.Capacity,
		SOATURL:      req.SOATURL,
		PhotoURL:     req.PhotoURL,
		CreatedAt:    time.Now(),
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPlateTaken
		}
		return nil, err
	}

	if !owner.IsDriver {
		owner.IsDriver = true
		_ = s.userRepo.Update(ctx, owner)
	}

	return vehicle, nil
}

// List returns the vehicles registered by a user.
func (s *VehicleService) List(ctx context.Context, ownerUID string) ([]*domain.Vehicle, error) {
	if ownerUID == "" {
		return nil, ErrInvalidUserID
	}

	return s.vehicleRepo.ListByOwner(ctx, ownerUID)
}

// Delete removes a vehicle. The owner must keep at least one vehicle
// registered, so deletion requires two or more.
func (s *VehicleService) Delete(ctx context.Context, ownerUID, vehicleID string) error {
	if ownerUID == "" {
		return ErrInvalidUserID
	}
	if vehicleID == "" {
		return ErrInvalidVehicleID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.OwnerUID != ownerUID {
		return ErrNotVehicleOwner
	}

	vehicles, err := s.vehicleRepo.ListByOwner(ctx, ownerUID)
	if err != nil {
		return err
	}
	if len(vehicles) < 2 {
		return ErrLastVehicle
	}

	return s.vehicleRepo.Delete(ctx, vehicleID)
}
