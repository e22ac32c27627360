package pricing

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestHaversineOneDegreeOfLatitude(t *testing.T) {
	t.Parallel()

	got := HaversineMiles(LatLng{Lat: 42, Lng: -83}, LatLng{Lat: 43, Lng: -83})
	// One degree of latitude is roughly 69.1 statute miles.
	if math.Abs(got-69.09) > 0.2 {
		t.Fatalf("expected ~69.1 miles, got %.2f", got)
	}
}

func TestHaversineSamePointIsZero(t *testing.T) {
	t.Parallel()

	p := LatLng{Lat: 42.33, Lng: -83.05}
	if got := HaversineMiles(p, p); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestFallbackAppliesDrivingFactor(t *testing.T) {
	t.Parallel()

	origin := LatLng{Lat: 42, Lng: -83}
	dest := LatLng{Lat: 43, Lng: -83}
	straight := HaversineMiles(origin, dest)
	if got := FallbackMiles(origin, dest); math.Abs(got-straight*1.4) > 1e-9 {
		t.Fatalf("expected %.4f, got %.4f", straight*1.4, got)
	}
}

func TestResolveDistancePrefersProvider(t *testing.T) {
	t.Parallel()

	provider := stubDistanceProvider{miles: 17.5}
	got := ResolveDistance(context.Background(), provider, LatLng{Lat: 42, Lng: -83}, LatLng{Lat: 42.2, Lng: -83.1})
	if got != 17.5 {
		t.Fatalf("expected provider value 17.5, got %f", got)
	}
}

func TestResolveDistanceFallsBackOnProviderError(t *testing.T) {
	t.Parallel()

	origin := LatLng{Lat: 42, Lng: -83}
	dest := LatLng{Lat: 42.2, Lng: -83.1}

	provider := stubDistanceProvider{err: errors.New("routes api unavailable")}
	got := ResolveDistance(context.Background(), provider, origin, dest)
	if want := FallbackMiles(origin, dest); got != want {
		t.Fatalf("expected fallback %.4f, got %.4f", want, got)
	}

	// A zero-mile provider answer is treated the same as an error.
	provider = stubDistanceProvider{miles: 0}
	if got := ResolveDistance(context.Background(), provider, origin, dest); got != FallbackMiles(origin, dest) {
		t.Fatalf("zero provider result must fall back, got %f", got)
	}
}

func TestResolveDistanceUnknownCoordinates(t *testing.T) {
	t.Parallel()

	got := ResolveDistance(context.Background(), stubDistanceProvider{miles: 10}, LatLng{}, LatLng{Lat: 42, Lng: -83})
	if got != 0 {
		t.Fatalf("missing origin must resolve to 0, got %f", got)
	}
}

type stubDistanceProvider struct {
	miles float64
	err   error
}

func (s stubDistanceProvider) DrivingMiles(_ context.Context, _, _ LatLng) (float64, error) {
	return s.miles, s.err
}
