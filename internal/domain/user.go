package domain

import (
	"regexp"
	"time"
)

// TripRole distinguishes how a user participates in a trip.
type TripRole string

const (
	TripRoleDriver    TripRole = "driver"
	TripRolePassenger TripRole = "passenger"
)

// TripRef is a normalized reference from a user to a trip they drive or
// applied to. Replaces the legacy mixed shape of bare trip IDs and
// {trip_id, status} objects.
type TripRef struct {
	TripID string
	Role   TripRole
	Status ApplicationStatus
}

// User represents an account in the system.
type User struct {
	UID            string
	UserID         string // institutional student code
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Photo          string
	City           string
	Address        string
	NearbyLandmark string
	IsDriver       bool
	PasswordHash   string
	MyTrips        []TripRef
	CreatedAt      time.Time
}

// FullName returns the display name used in trip snapshots.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Colombian mobile numbers: ten digits starting with 3.
var phonePattern = regexp.MustCompile(`^3[0-9]{9}$`)

// ValidPhone reports whether the phone is a valid Colombian mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
