package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/internal/pricingrules"
	"github.com/bouncehq/rentals-backend/pkg/config"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/metrics"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// Service computes non-persisted price quotes for a cart and event.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
}

type service struct {
	rules     pricingrules.Service
	distances *DistanceResolver
	warehouse pricing.LatLng
	metrics   *metrics.PricingMetrics
	logg      *logger.Logger
}

// NewService builds the quote service.
func NewService(rules pricingrules.Service, distances *DistanceResolver, warehouse config.WarehouseConfig, m *metrics.PricingMetrics, logg *logger.Logger) (Service, error) {
	if rules == nil {
		return nil, fmt.Errorf("pricing rules service required")
	}
	if distances == nil {
		return nil, fmt.Errorf("distance resolver required")
	}
	return &service{
		rules:     rules,
		distances: distances,
		warehouse: pricing.LatLng{Lat: warehouse.Lat, Lng: warehouse.Lng},
		metrics:   m,
		logg:      logg,
	}, nil
}

// QuoteInput is the cart-plus-event payload a quote is computed from.
type QuoteInput struct {
	Items      []pricing.CartItem
	Event      pricing.EventDetails
	Discounts  types.Discounts
	CustomFees types.CustomFees
}

// QuoteResult carries the computed money breakdown alongside the resolved
// travel facts and a display-ready summary.
type QuoteResult struct {
	Breakdown pricing.Breakdown    `json:"breakdown"`
	Summary   pricing.OrderSummary `json:"summary"`
	Miles     *float64             `json:"miles,omitempty"`
}

// Quote validates the input, resolves the driving distance and runs the
// pricing pipeline. Nothing is persisted.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	started := time.Now()

	result, err := s.quote(ctx, input)
	if err != nil {
		s.metrics.ObserveQuote("error", time.Since(started))
		return nil, err
	}
	s.metrics.ObserveQuote("success", time.Since(started))
	return result, nil
}

func (s *service) quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	rules, err := s.rules.Current(ctx)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pricing rules are not configured")
	}

	event := input.Event.Normalize()
	if rules.OvernightHolidayOnly && event.Pickup == enums.PickupNextDay {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "overnight rentals are currently limited to holiday dates; choose same-day pickup")
	}

	var miles *float64
	if resolved := s.distances.Miles(ctx, s.warehouse, pricing.LatLng{Lat: event.Lat, Lng: event.Lng}); resolved > 0 {
		miles = &resolved
	}

	breakdown, err := pricing.Compute(pricing.Input{
		Items:      input.Items,
		Event:      event,
		Rules:      rules,
		Miles:      miles,
		Discounts:  input.Discounts,
		CustomFees: input.CustomFees,
	})
	if err != nil {
		return nil, err
	}

	summary := pricing.BuildSummary(pricing.SummaryInput{
		Items:             input.Items,
		TravelFeeCents:    &breakdown.Travel.FeeCents,
		TravelLabel:       breakdown.Travel.Label,
		SurfaceFeeCents:   &breakdown.SurfaceFeeCents,
		SameDayFeeCents:   &breakdown.SameDayFeeCents,
		GeneratorFeeCents: &breakdown.GeneratorFeeCents,
		Discounts:         input.Discounts,
		CustomFees:        input.CustomFees,
		SubtotalCents:     breakdown.SubtotalCents,
		TaxCents:          breakdown.TaxCents,
		TotalCents:        breakdown.TotalCents,
		DepositDueCents:   breakdown.DepositDueCents,
		EventDate:         event.EventDate,
		EventEndDate:      event.EventEndDate,
		Pickup:            event.Pickup,
	})

	return &QuoteResult{
		Breakdown: breakdown,
		Summary:   summary,
		Miles:     miles,
	}, nil
}

func validateInput(input QuoteInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote requires at least one item")
	}
	for _, item := range input.Items {
		if item.UnitPriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item prices must be non-negative")
		}
	}
	if input.Event.EventDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "event date is required")
	}
	if !input.Event.EventEndDate.IsZero() && input.Event.EventEndDate.Before(input.Event.EventDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "event end date must not precede the start date")
	}
	if input.Event.GeneratorQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "generator quantity must be non-negative")
	}
	if !input.Event.Surface.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown surface type")
	}
	if !input.Event.LocationType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown location type")
	}
	if !input.Event.Pickup.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown pickup preference")
	}
	return nil
}
