package enums

import "fmt"

// FeeKind names the individually waivable charge lines on an order.
type FeeKind string

const (
	FeeKindTravel    FeeKind = "travel"
	FeeKindSurface   FeeKind = "surface"
	FeeKindSameDay   FeeKind = "same_day_pickup"
	FeeKindGenerator FeeKind = "generator"
	FeeKindTax       FeeKind = "tax"
)

var validFeeKinds = []FeeKind{
	FeeKindTravel,
	FeeKindSurface,
	FeeKindSameDay,
	FeeKindGenerator,
	FeeKindTax,
}

// String implements fmt.Stringer.
func (f FeeKind) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FeeKind.
func (f FeeKind) IsValid() bool {
	for _, candidate := range validFeeKinds {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeeKind converts raw input into a FeeKind.
func ParseFeeKind(value string) (FeeKind, error) {
	for _, candidate := range validFeeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fee kind %q", value)
}
