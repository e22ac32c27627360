package enums

import "fmt"

// SurfaceType describes the ground the inflatable will be set up on.
type SurfaceType string

const (
	SurfaceGrass  SurfaceType = "grass"
	SurfaceCement SurfaceType = "cement"
)

var validSurfaceTypes = []SurfaceType{
	SurfaceGrass,
	SurfaceCement,
}

// String implements fmt.Stringer.
func (s SurfaceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SurfaceType.
func (s SurfaceType) IsValid() bool {
	for _, candidate := range validSurfaceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// RequiresSandbags reports whether the surface cannot be staked and needs
// sandbag anchoring.
func (s SurfaceType) RequiresSandbags() bool {
	return s == SurfaceCement
}

// ParseSurfaceType converts raw input into a SurfaceType.
func ParseSurfaceType(value string) (SurfaceType, error) {
	for _, candidate := range validSurfaceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid surface type %q", value)
}
