package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bouncehq/rentals-backend/api/responses"
	"github.com/bouncehq/rentals-backend/api/validators"
	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/internal/quotes"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

type quoteItemRequest struct {
	UnitID         string `json:"unit_id" validate:"required,uuid"`
	Name           string `json:"name" validate:"required,max=200"`
	Mode           string `json:"mode" validate:"omitempty,oneof=dry water"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
	Qty            int    `json:"qty" validate:"gte=0,lte=50"`
}

type quoteEventRequest struct {
	EventDate     time.Time `json:"event_date" validate:"required"`
	EventEndDate  time.Time `json:"event_end_date"`
	StartWindow   string    `json:"start_window"`
	EndWindow     string    `json:"end_window"`
	UntilEndOfDay bool      `json:"until_end_of_day"`
	LocationType  string    `json:"location_type" validate:"omitempty,oneof=residential commercial"`
	City          string    `json:"city" validate:"max=120"`
	Zip           string    `json:"zip" validate:"max=12"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Surface       string    `json:"surface" validate:"omitempty,oneof=grass cement"`
	GeneratorQty  int       `json:"generator_qty" validate:"gte=0,lte=10"`
	Pickup        string    `json:"pickup_preference" validate:"omitempty,oneof=next_day same_day"`
}

type quoteRequest struct {
	Items      []quoteItemRequest `json:"items" validate:"required,min=1,max=25,dive"`
	Event      quoteEventRequest  `json:"event" validate:"required"`
	Discounts  types.Discounts    `json:"discounts"`
	CustomFees types.CustomFees   `json:"custom_fees"`
}

func (req quoteRequest) toInput() quotes.QuoteInput {
	items := make([]pricing.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		unitID, _ := uuid.Parse(item.UnitID)
		items = append(items, pricing.CartItem{
			UnitID:         unitID,
			Name:           validators.SanitizeString(item.Name, 200),
			Mode:           enums.RentalMode(item.Mode),
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
		})
	}
	return quotes.QuoteInput{
		Items:      items,
		Event:      req.Event.toDetails(),
		Discounts:  req.Discounts,
		CustomFees: req.CustomFees,
	}
}

func (req quoteEventRequest) toDetails() pricing.EventDetails {
	details := pricing.EventDetails{
		EventDate:     req.EventDate,
		EventEndDate:  req.EventEndDate,
		StartWindow:   req.StartWindow,
		EndWindow:     req.EndWindow,
		UntilEndOfDay: req.UntilEndOfDay,
		LocationType:  enums.LocationType(req.LocationType),
		City:          validators.SanitizeString(req.City, 120),
		Zip:           validators.SanitizeString(req.Zip, 12),
		Lat:           req.Lat,
		Lng:           req.Lng,
		Surface:       enums.SurfaceType(req.Surface),
		GeneratorQty:  req.GeneratorQty,
		Pickup:        enums.PickupPreference(req.Pickup),
	}
	if details.LocationType == "" {
		details.LocationType = enums.LocationResidential
	}
	if details.Surface == "" {
		details.Surface = enums.SurfaceGrass
	}
	if details.Pickup == "" {
		details.Pickup = enums.PickupNextDay
	}
	return details
}

// QuoteCreate prices a cart without persisting anything.
func QuoteCreate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Quote(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type travelRequest struct {
	Address string  `json:"address" validate:"max=300"`
	City    string  `json:"city" validate:"max=120"`
	Zip     string  `json:"zip" validate:"max=12"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// TravelQuote prices the travel fee for a destination on its own.
func TravelQuote(calc *quotes.TravelCalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "travel calculator unavailable"))
			return
		}

		var req travelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := calc.Calculate(r.Context(), quotes.TravelInput{
			Address: validators.SanitizeString(req.Address, 300),
			City:    validators.SanitizeString(req.City, 120),
			Zip:     validators.SanitizeString(req.Zip, 12),
			Lat:     req.Lat,
			Lng:     req.Lng,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
