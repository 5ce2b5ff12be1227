package domain

import (
	"regexp"
	"strings"
	"time"
)

// Vehicle represents a registered vehicle owned by a driver.
type Vehicle struct {
	ID           string
	OwnerUID     string
	LicensePlate string
	Model        string
	Capacity     int
	SOATURL      string // mandatory insurance document
	PhotoURL     string
	CreatedAt    time.Time
}

// Colombian private plates: three uppercase letters followed by three digits.
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)

// NormalizePlate uppercases and strips spaces and dashes from a plate as typed.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, " ", "")
	return strings.ReplaceAll(plate, "-", "")
}

// ValidPlate reports whether a normalized plate matches the Colombian format.
func ValidPlate(plate string) bool {
	return platePattern.MatchString(plate)
}
