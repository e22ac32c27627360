package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bouncehq/rentals-backend/api/responses"
	"github.com/bouncehq/rentals-backend/api/validators"
	internalorders "github.com/bouncehq/rentals-backend/internal/orders"
	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

const maxListLimit = 200

type customerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=30"`
}

type addressRequest struct {
	Line1      string  `json:"line1" validate:"max=300"`
	Line2      string  `json:"line2" validate:"max=300"`
	City       string  `json:"city" validate:"max=120"`
	State      string  `json:"state" validate:"max=60"`
	PostalCode string  `json:"postal_code" validate:"max=12"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

type orderEventRequest struct {
	EventDate     time.Time      `json:"event_date" validate:"required"`
	EventEndDate  time.Time      `json:"event_end_date"`
	StartWindow   string         `json:"start_window"`
	EndWindow     string         `json:"end_window"`
	UntilEndOfDay bool           `json:"until_end_of_day"`
	LocationType  string         `json:"location_type" validate:"omitempty,oneof=residential commercial"`
	Address       addressRequest `json:"address"`
	Surface       string         `json:"surface" validate:"omitempty,oneof=grass cement"`
	GeneratorQty  int            `json:"generator_qty" validate:"gte=0,lte=10"`
	Pickup        string         `json:"pickup_preference" validate:"omitempty,oneof=next_day same_day"`
}

type createOrderRequest struct {
	Customer           customerRequest    `json:"customer" validate:"required"`
	Items              []quoteItemRequest `json:"items" validate:"required,min=1,max=25,dive"`
	Event              orderEventRequest  `json:"event" validate:"required"`
	Discounts          types.Discounts    `json:"discounts"`
	CustomFees         types.CustomFees   `json:"custom_fees"`
	TipCents           int64              `json:"tip_cents" validate:"gte=0"`
	CustomDepositCents *int64             `json:"custom_deposit_cents"`
}

func (req createOrderRequest) toInput() internalorders.CreateInput {
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

	event := internalorders.EventInput{
		EventDate:     req.Event.EventDate,
		EventEndDate:  req.Event.EventEndDate,
		StartWindow:   req.Event.StartWindow,
		EndWindow:     req.Event.EndWindow,
		UntilEndOfDay: req.Event.UntilEndOfDay,
		LocationType:  enums.LocationType(req.Event.LocationType),
		Address: types.Address{
			Line1:      validators.SanitizeString(req.Event.Address.Line1, 300),
			Line2:      validators.SanitizeString(req.Event.Address.Line2, 300),
			City:       validators.SanitizeString(req.Event.Address.City, 120),
			State:      validators.SanitizeString(req.Event.Address.State, 60),
			PostalCode: validators.SanitizeString(req.Event.Address.PostalCode, 12),
			Lat:        req.Event.Address.Lat,
			Lng:        req.Event.Address.Lng,
		},
		Surface:      enums.SurfaceType(req.Event.Surface),
		GeneratorQty: req.Event.GeneratorQty,
		Pickup:       enums.PickupPreference(req.Event.Pickup),
	}
	if event.LocationType == "" {
		event.LocationType = enums.LocationResidential
	}
	if event.Surface == "" {
		event.Surface = enums.SurfaceGrass
	}
	if event.Pickup == "" {
		event.Pickup = enums.PickupNextDay
	}

	return internalorders.CreateInput{
		Customer: internalorders.CustomerInput{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items:              items,
		Event:              event,
		Discounts:          req.Discounts,
		CustomFees:         req.CustomFees,
		TipCents:           req.TipCents,
		CustomDepositCents: req.CustomDepositCents,
	}
}

func orderIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

// AdminOrderCreate books a new order from the back office.
func AdminOrderCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// AdminOrderList returns orders filtered by status and event date range.
func AdminOrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := internalorders.ListFilters{Limit: limit}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, parseErr := time.Parse("2006-01-02", raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid from date"))
				return
			}
			filters.EventDateFrom = &from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, parseErr := time.Parse("2006-01-02", raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid to date"))
				return
			}
			filters.EventDateTo = &to
		}

		orders, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// AdminOrderDetail returns the order plus its reconstructed pre-waiver fees.
func AdminOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func statusTransitionHandler(svc internalorders.Service, logg *logger.Logger, transition func(*http.Request, uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := transition(r, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminOrderConfirm moves a draft order to confirmed.
func AdminOrderConfirm(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return statusTransitionHandler(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		return svc.Confirm(r.Context(), id)
	})
}

// AdminOrderComplete closes out a confirmed order.
func AdminOrderComplete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return statusTransitionHandler(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		return svc.Complete(r.Context(), id)
	})
}

// AdminOrderCancel voids a draft or confirmed order.
func AdminOrderCancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return statusTransitionHandler(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		return svc.Cancel(r.Context(), id)
	})
}

type waiverRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=travel surface same_day_pickup generator tax"`
	Waived bool   `json:"waived"`
	Reason string `json:"reason" validate:"max=300"`
}

// AdminOrderSetWaiver toggles a fee waiver on the order.
func AdminOrderSetWaiver(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req waiverRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetWaiver(r.Context(), id, internalorders.WaiverInput{
			Kind:   enums.FeeKind(req.Kind),
			Waived: req.Waived,
			Reason: req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderAddDiscount appends a discount line to the order.
func AdminOrderAddDiscount(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var discount types.Discount
		if err := validators.DecodeJSONBody(r, &discount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddDiscount(r.Context(), id, discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderRemoveDiscount deletes a discount line by name.
func AdminOrderRemoveDiscount(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := strings.TrimSpace(chi.URLParam(r, "name"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "discount name is required"))
			return
		}

		order, err := svc.RemoveDiscount(r.Context(), id, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type customFeeRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
}

// AdminOrderAddCustomFee appends an admin-entered charge line.
func AdminOrderAddCustomFee(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customFeeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddCustomFee(r.Context(), id, types.CustomFee{
			Name:        validators.SanitizeString(req.Name, 200),
			AmountCents: req.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderRemoveCustomFee deletes a custom fee line by name.
func AdminOrderRemoveCustomFee(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := strings.TrimSpace(chi.URLParam(r, "name"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "custom fee name is required"))
			return
		}

		order, err := svc.RemoveCustomFee(r.Context(), id, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type tipRequest struct {
	TipCents int64 `json:"tip_cents" validate:"gte=0"`
}

// AdminOrderSetTip records a gratuity on the order.
func AdminOrderSetTip(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req tipRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetTip(r.Context(), id, req.TipCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type depositRequest struct {
	// Null clears the override and restores the per-unit default.
	DepositCents *int64 `json:"deposit_cents"`
}

// AdminOrderSetDeposit overrides or clears the deposit requirement.
func AdminOrderSetDeposit(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req depositRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetCustomDeposit(r.Context(), id, req.DepositCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type paymentRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"gt=0"`
}

// AdminOrderRecordPayment records a received deposit payment.
func AdminOrderRecordPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordDepositPayment(r.Context(), id, req.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderInvoice returns the display breakdown for the order.
func AdminOrderInvoice(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.InvoiceSummary(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
