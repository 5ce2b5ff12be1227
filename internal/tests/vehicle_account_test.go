package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"uniride/internal/auth"
	"uniride/internal/domain"
	"uniride/internal/service"
)

// ──────────────────────────────────────────────
// VEHICLES
// ──────────────────────────────────────────────

func TestRegisterVehicle_NormalizesPlate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedPassenger("u1")

	vehicle, err := f.vehicles.Register(context.Background(), service.RegisterVehicleRequest{
		OwnerUID:     "u1",
		LicensePlate: "xyz 789",
		Model:        "Renault Logan",
		Capacity:     5,
		SOATURL:      "https://files.test/soat.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicle.LicensePlate != "XYZ789" {
		t.Errorf("expected normalized plate XYZ789, got %s", vehicle.LicensePlate)
	}
}

func TestRegisterVehicle_InvalidPlateRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedPassenger("u1")

	for _, plate := range []string{"AB1234", "1234AB", "ABCD12", ""} {
		_, err := f.vehicles.Register(context.Background(), service.RegisterVehicleRequest{
			OwnerUID:     "u1",
			LicensePlate: plate,
			Model:        "Renault Logan",
			Capacity:     5,
			SOATURL:      "https://files.test/soat.pdf",
		})
		if !errors.Is(err, service.ErrInvalidPlate) {
			t.Errorf("plate %q: expected ErrInvalidPlate, got %v", plate, err)
		}
	}
}

func TestRegisterVehicle_SOATRequired(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedPassenger("u1")

	_, err := f.vehicles.Register(context.Background(), service.RegisterVehicleRequest{
		OwnerUID:     "u1",
		LicensePlate: "XYZ789",
		Model:        "Renault Logan",
		Capacity:     5,
	})
	if !errors.Is(err, service.ErrSOATRequired) {
		t.Errorf("expected ErrSOATRequired, got %v", err)
	}
}

func TestRegisterVehicle_FirstVehicleMakesDriver(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedPassenger("u1")

	_, err := f.vehicles.Register(context.Background(), service.RegisterVehicleRequest{
		OwnerUID:     "u1",
		LicensePlate: "XYZ789",
		Model:        "Renault Logan",
		Capacity:     5,
		SOATURL:      "https://files.test/soat.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _ := f.userRepo.GetByUID(context.Background(), "u1")
	if !user.IsDriver {
		t.Error("expected user flagged as driver after first vehicle")
	}
}

func TestRegisterVehicle_DuplicatePlateRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1") // owns ABC123
	f.seedPassenger("u1")

	_, err := f.vehicles.Register(context.Background(), service.RegisterVehicleRequest{
		OwnerUID:     "u1",
		LicensePlate: "abc-123",
		Model:        "Renault Logan",
		Capacity:     5,
		SOATURL:      "https://files.test/soat.pdf",
	})
	if !errors.Is(err, service.ErrPlateTaken) {
		t.Errorf("expected ErrPlateTaken, got %v", err)
	}
}

func TestDeleteVehicle_LastVehicleProtected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")

	err := f.vehicles.Delete(context.Background(), "d1", "vehicle-d1")
	if !errors.Is(err, service.ErrLastVehicle) {
		t.Errorf("expected ErrLastVehicle, got %v", err)
	}
}

func TestDeleteVehicle_OwnerOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("d1")
	f.vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:           "vehicle-2",
		OwnerUID:     "d1",
		LicensePlate: "QRS456",
		Model:        "Kia Picanto",
		Capacity:     4,
		SOATURL:      "https://files.test/soat2.pdf",
	})

	err := f.vehicles.Delete(context.Background(), "intruder", "vehicle-2")
	if !errors.Is(err, service.ErrNotVehicleOwner) {
		t.Errorf("expected ErrNotVehicleOwner, got %v", err)
	}
}

// ──────────────────────────────────────────────
// ACCOUNTS
// ──────────────────────────────────────────────

func newAccountService(f *fixture) *service.AccountService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return service.NewAccountService(f.userRepo, tokens)
}

func TestRegisterAccount_IssuesSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	accounts := newAccountService(f)

	session, err := accounts.Register(context.Background(), service.RegisterAccountRequest{
		UserID:    "20201234",
		FirstName: "Laura",
		LastName:  "Gomez",
		Email:     "laura@uni.edu.co",
		Phone:     "3001112233",
		Password:  "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token == "" {
		t.Error("expected a session token")
	}
	if session.User.PasswordHash == "" {
		t.Error("expected password stored hashed")
	}
	if session.User.PasswordHash == "hunter2hunter2" {
		t.Error("password must not be stored in clear")
	}
}

func TestRegisterAccount_InvalidPhoneRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	accounts := newAccountService(f)

	for _, phone := range []string{"1234567890", "300123456", "30012345678", "abc"} {
		_, err := accounts.Register(context.Background(), service.RegisterAccountRequest{
			UserID:    "20201234",
			FirstName: "Laura",
			LastName:  "Gomez",
			Email:     "laura@uni.edu.co",
			Phone:     phone,
			Password:  "hunter2hunter2",
		})
		if !errors.Is(err, service.ErrInvalidPhone) {
			t.Errorf("phone %q: expected ErrInvalidPhone, got %v", phone, err)
		}
	}
}

func TestRegisterAccount_DuplicateEmailRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	accounts := newAccountService(f)

	req := service.RegisterAccountRequest{
		UserID:    "20201234",
		FirstName: "Laura",
		LastName:  "Gomez",
		Email:     "laura@uni.edu.co",
		Phone:     "3001112233",
		Password:  "hunter2hunter2",
	}
	if _, err := accounts.Register(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := accounts.Register(context.Background(), req)
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture()
	accounts := newAccountService(f)

	_, err := accounts.Register(context.Background(), service.RegisterAccountRequest{
		UserID:    "20201234",
		FirstName: "Laura",
		LastName:  "Gomez",
		Email:     "laura@uni.edu.co",
		Phone:     "3001112233",
		Password:  "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := accounts.Login(context.Background(), "laura@uni.edu.co", "hunter2hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.Email != "laura@uni.edu.co" {
		t.Errorf("unexpected user: %+v", session.User)
	}

	if _, err := accounts.Login(context.Background(), "laura@uni.edu.co", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateProfile_EmptyFieldsUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedPassenger("u1")
	accounts := newAccountService(f)

	user, err := accounts.UpdateProfile(context.Background(), service.UpdateProfileRequest{
		UID:  "u1",
		City: "Bogota",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.City != "Bogota" {
		t.Errorf("expected city updated, got %q", user.City)
	}
	if user.Phone != "3109876543" {
		t.Errorf("expected phone untouched, got %q", user.Phone)
	}
}
