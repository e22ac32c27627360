package quotes

import (
	"context"
	"strings"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/maps"
)

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodedAddress, error)
}

// TravelInput identifies a delivery destination, either by coordinates or by
// a free-form address to geocode.
type TravelInput struct {
	Address string
	City    string
	Zip     string
	Lat     float64
	Lng     float64
}

// TravelResult is the standalone travel-fee answer used by the calculator
// screen.
type TravelResult struct {
	Quote            pricing.TravelQuote `json:"quote"`
	FormattedAddress string              `json:"formatted_address,omitempty"`
}

// TravelCalculator prices the travel fee for a destination without building
// a full quote.
type TravelCalculator struct {
	service  *service
	geocoder Geocoder
}

// NewTravelCalculator wires the calculator against the quote service's
// distance stack. The geocoder is optional; without it the input must carry
// coordinates.
func NewTravelCalculator(svc Service, geocoder Geocoder) (*TravelCalculator, error) {
	inner, ok := svc.(*service)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "quote service implementation required")
	}
	return &TravelCalculator{service: inner, geocoder: geocoder}, nil
}

// Calculate resolves the destination and prices its travel fee under the
// current rules.
func (t *TravelCalculator) Calculate(ctx context.Context, input TravelInput) (*TravelResult, error) {
	dest := pricing.LatLng{Lat: input.Lat, Lng: input.Lng}
	formatted := ""

	if dest.IsZero() {
		if strings.TrimSpace(input.Address) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "address or coordinates are required")
		}
		if t.geocoder == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "address lookup is not configured")
		}
		geo, err := t.geocoder.Geocode(ctx, input.Address)
		if err != nil {
			return nil, err
		}
		dest = pricing.LatLng{Lat: geo.Location.Latitude, Lng: geo.Location.Longitude}
		formatted = geo.FormattedAddress
	}

	rules, err := t.service.rules.Current(ctx)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pricing rules are not configured")
	}

	miles := t.service.distances.Miles(ctx, t.service.warehouse, dest)
	quote := pricing.ResolveTravelFee(miles, input.City, input.Zip, rules)

	return &TravelResult{Quote: quote, FormattedAddress: formatted}, nil
}
