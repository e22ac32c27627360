package enums

import "fmt"

// RentalMode captures whether a unit is booked dry or with the water feature.
type RentalMode string

const (
	RentalModeDry   RentalMode = "dry"
	RentalModeWater RentalMode = "water"
)

var validRentalModes = []RentalMode{
	RentalModeDry,
	RentalModeWater,
}

// String implements fmt.Stringer.
func (r RentalMode) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RentalMode.
func (r RentalMode) IsValid() bool {
	for _, candidate := range validRentalModes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRentalMode converts raw input into a RentalMode.
func ParseRentalMode(value string) (RentalMode, error) {
	for _, candidate := range validRentalModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental mode %q", value)
}
