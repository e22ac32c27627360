package enums

import "fmt"

// PickupPreference controls when the crew collects the units after an event.
type PickupPreference string

const (
	PickupNextDay PickupPreference = "next_day"
	PickupSameDay PickupPreference = "same_day"
)

var validPickupPreferences = []PickupPreference{
	PickupNextDay,
	PickupSameDay,
}

// String implements fmt.Stringer.
func (p PickupPreference) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PickupPreference.
func (p PickupPreference) IsValid() bool {
	for _, candidate := range validPickupPreferences {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePickupPreference converts raw input into a PickupPreference.
func ParsePickupPreference(value string) (PickupPreference, error) {
	for _, candidate := range validPickupPreferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup preference %q", value)
}
