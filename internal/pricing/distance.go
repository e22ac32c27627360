package pricing

import (
	"context"
	"math"
)

const (
	earthRadiusMiles = 3959.0

	// drivingFactor converts great-circle miles into an approximation of
	// road miles when no routing provider is reachable.
	drivingFactor = 1.4
)

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// IsZero reports whether the coordinate is unset.
func (l LatLng) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

// DrivingDistanceProvider supplies a live driving-distance estimate.
// Implementations must honor the context deadline; the resolver never waits
// longer than its configured timeout.
type DrivingDistanceProvider interface {
	DrivingMiles(ctx context.Context, origin, dest LatLng) (float64, error)
}

// HaversineMiles returns the great-circle distance between two coordinates.
func HaversineMiles(origin, dest LatLng) float64 {
	lat1 := origin.Lat * math.Pi / 180
	lat2 := dest.Lat * math.Pi / 180
	dLat := (dest.Lat - origin.Lat) * math.Pi / 180
	dLng := (dest.Lng - origin.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// FallbackMiles is the deterministic non-network driving-distance estimate:
// great-circle distance scaled by the driving factor.
func FallbackMiles(origin, dest LatLng) float64 {
	return HaversineMiles(origin, dest) * drivingFactor
}

// ResolveDistance produces a best-effort driving distance in miles. When the
// provider is absent, errors, or returns a non-positive result, the fallback
// estimate is used instead. It never returns an error: distance resolution
// degrades silently.
func ResolveDistance(ctx context.Context, provider DrivingDistanceProvider, origin, dest LatLng) float64 {
	if origin.IsZero() || dest.IsZero() {
		return 0
	}
	if provider != nil {
		miles, err := provider.DrivingMiles(ctx, origin, dest)
		if err == nil && miles > 0 {
			return miles
		}
	}
	return FallbackMiles(origin, dest)
}
