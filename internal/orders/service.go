package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/internal/pricingrules"
	"github.com/bouncehq/rentals-backend/internal/quotes"
	"github.com/bouncehq/rentals-backend/pkg/config"
	"github.com/bouncehq/rentals-backend/pkg/db/models"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes booking and invoice-adjustment operations. Every mutation
// recomputes the order's money columns through the pricing pipeline so the
// persisted totals never drift from their inputs.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	List(ctx context.Context, filters ListFilters) ([]models.Order, error)
	Confirm(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetWaiver(ctx context.Context, id uuid.UUID, input WaiverInput) (*models.Order, error)
	AddDiscount(ctx context.Context, id uuid.UUID, discount types.Discount) (*models.Order, error)
	RemoveDiscount(ctx context.Context, id uuid.UUID, name string) (*models.Order, error)
	AddCustomFee(ctx context.Context, id uuid.UUID, fee types.CustomFee) (*models.Order, error)
	RemoveCustomFee(ctx context.Context, id uuid.UUID, name string) (*models.Order, error)
	SetTip(ctx context.Context, id uuid.UUID, tipCents int64) (*models.Order, error)
	SetCustomDeposit(ctx context.Context, id uuid.UUID, depositCents *int64) (*models.Order, error)
	RecordDepositPayment(ctx context.Context, id uuid.UUID, amountCents int64) (*models.Order, error)
	InvoiceSummary(ctx context.Context, id uuid.UUID) (*pricing.OrderSummary, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	rules     pricingrules.Service
	distances *quotes.DistanceResolver
	warehouse pricing.LatLng
	logg      *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner, rules pricingrules.Service, distances *quotes.DistanceResolver, warehouse config.WarehouseConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if rules == nil {
		return nil, fmt.Errorf("pricing rules service required")
	}
	if distances == nil {
		return nil, fmt.Errorf("distance resolver required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		rules:     rules,
		distances: distances,
		warehouse: pricing.LatLng{Lat: warehouse.Lat, Lng: warehouse.Lng},
		logg:      logg,
	}, nil
}

// Create books a draft order: snapshots the cart and the current pricing
// rules, resolves the driving distance once, and persists the computed
// breakdown atomically.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	rules, err := s.rules.Current(ctx)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pricing rules are not configured")
	}

	order := &models.Order{
		ID:            uuid.New(),
		Status:        enums.OrderStatusDraft,
		CustomerName:  strings.TrimSpace(input.Customer.Name),
		CustomerEmail: strings.TrimSpace(input.Customer.Email),
		CustomerPhone: strings.TrimSpace(input.Customer.Phone),
		EventDate:     input.Event.EventDate,
		EventEndDate:  input.Event.EventEndDate,
		StartWindow:   input.Event.StartWindow,
		EndWindow:     input.Event.EndWindow,
		UntilEndOfDay: input.Event.UntilEndOfDay,
		LocationType:  input.Event.LocationType,
		Address:       input.Event.Address,
		Surface:       input.Event.Surface,
		GeneratorQty:  input.Event.GeneratorQty,
		Pickup:        input.Event.Pickup,

		Discounts:          input.Discounts,
		CustomFees:         input.CustomFees,
		TipCents:           input.TipCents,
		CustomDepositCents: input.CustomDepositCents,

		// Snapshot so invoice math survives later rule edits.
		RulesSnapshot: rules,
	}

	normalizeEventColumns(order)

	if dest := (pricing.LatLng{Lat: input.Event.Address.Lat, Lng: input.Event.Address.Lng}); !dest.IsZero() {
		miles := s.distances.Miles(ctx, s.warehouse, dest)
		if miles > 0 {
			order.TravelTotalMiles = &miles
		}
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			UnitID:         item.UnitID,
			Name:           item.Name,
			Mode:           item.Mode,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            qty,
		})
	}
	order.Items = items

	if err := s.refresh(order, rules); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return err
		}
		return repo.CreateItems(ctx, items)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order created")
	}
	return order, nil
}

// Get returns the order plus the reconstructed pre-waiver fee amounts.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rules, err := s.rulesFor(ctx, order)
	if err != nil {
		return nil, err
	}

	reconstruction := pricing.Reconstruct(reconstructionFacts(order), rules)
	return &OrderDetail{Order: order, Reconstruction: reconstruction}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Order, error) {
	listed, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return listed, nil
}

// Confirm moves a draft order into the confirmed state.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusConfirmed, enums.OrderStatusDraft)
}

// Complete closes out a confirmed order after the event.
func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusCompleted, enums.OrderStatusConfirmed)
}

// Cancel voids a draft or confirmed order.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusCanceled, enums.OrderStatusDraft, enums.OrderStatusConfirmed)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.OrderStatus, allowedFrom ...enums.OrderStatus) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	permitted := false
	for _, from := range allowedFrom {
		if order.Status == from {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, target))
	}

	order.Status = target
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(s.logg.WithField(ctx, "status", string(target)), "order status changed")
	}
	return saved, nil
}

// SetWaiver toggles one fee waiver. Waiving requires a reason; unwaiving
// restores the fee through recomputation from the stored facts.
func (s *service) SetWaiver(ctx context.Context, id uuid.UUID, input WaiverInput) (*models.Order, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown fee kind")
	}
	if input.Waived && strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waiving a fee requires a reason")
	}

	return s.mutate(ctx, id, func(order *models.Order) error {
		if order.Waivers == nil {
			order.Waivers = types.FeeWaivers{}
		}
		if input.Waived {
			order.Waivers[input.Kind] = types.Waiver{Waived: true, Reason: strings.TrimSpace(input.Reason)}
		} else {
			delete(order.Waivers, input.Kind)
		}
		return nil
	})
}

// AddDiscount appends a named discount to the invoice.
func (s *service) AddDiscount(ctx context.Context, id uuid.UUID, discount types.Discount) (*models.Order, error) {
	if strings.TrimSpace(discount.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount name is required")
	}
	switch discount.Kind() {
	case types.DiscountFixed:
		if discount.AmountCents() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fixed discount amount must be positive")
		}
	case types.DiscountPercentage:
		if discount.Percent() <= 0 || discount.Percent() > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount must be between 0 and 100")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount kind")
	}

	return s.mutate(ctx, id, func(order *models.Order) error {
		for _, existing := range order.Discounts {
			if strings.EqualFold(existing.Name, discount.Name) {
				return pkgerrors.New(pkgerrors.CodeConflict, "a discount with this name already exists")
			}
		}
		order.Discounts = append(order.Discounts, discount)
		return nil
	})
}

// RemoveDiscount deletes a discount by name.
func (s *service) RemoveDiscount(ctx context.Context, id uuid.UUID, name string) (*models.Order, error) {
	return s.mutate(ctx, id, func(order *models.Order) error {
		kept := order.Discounts[:0]
		found := false
		for _, existing := range order.Discounts {
			if strings.EqualFold(existing.Name, name) {
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		order.Discounts = kept
		return nil
	})
}

// AddCustomFee appends an admin-entered charge line.
func (s *service) AddCustomFee(ctx context.Context, id uuid.UUID, fee types.CustomFee) (*models.Order, error) {
	if strings.TrimSpace(fee.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom fee name is required")
	}
	if fee.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom fee amount must be positive")
	}

	return s.mutate(ctx, id, func(order *models.Order) error {
		order.CustomFees = append(order.CustomFees, fee)
		return nil
	})
}

// RemoveCustomFee deletes a custom fee by name.
func (s *service) RemoveCustomFee(ctx context.Context, id uuid.UUID, name string) (*models.Order, error) {
	return s.mutate(ctx, id, func(order *models.Order) error {
		kept := order.CustomFees[:0]
		found := false
		for _, existing := range order.CustomFees {
			if strings.EqualFold(existing.Name, name) {
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "custom fee not found")
		}
		order.CustomFees = kept
		return nil
	})
}

// SetTip records a gratuity. Tips ride on top of the total and are never
// taxed.
func (s *service) SetTip(ctx context.Context, id uuid.UUID, tipCents int64) (*models.Order, error) {
	if tipCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tip must be non-negative")
	}
	return s.mutate(ctx, id, func(order *models.Order) error {
		order.TipCents = tipCents
		return nil
	})
}

// SetCustomDeposit overrides the computed deposit; zero is a legal override
// and nil restores the default.
func (s *service) SetCustomDeposit(ctx context.Context, id uuid.UUID, depositCents *int64) (*models.Order, error) {
	if depositCents != nil && *depositCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom deposit must be non-negative")
	}
	return s.mutate(ctx, id, func(order *models.Order) error {
		order.CustomDepositCents = depositCents
		return nil
	})
}

// RecordDepositPayment accumulates a received deposit payment.
func (s *service) RecordDepositPayment(ctx context.Context, id uuid.UUID, amountCents int64) (*models.Order, error) {
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	return s.mutate(ctx, id, func(order *models.Order) error {
		order.DepositPaidCents += amountCents
		return nil
	})
}

// InvoiceSummary builds the display breakdown for the stored order.
func (s *service) InvoiceSummary(ctx context.Context, id uuid.UUID) (*pricing.OrderSummary, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := pricing.BuildSummary(pricing.SummaryInput{
		Items:             cartItems(order.Items),
		TravelFeeCents:    &order.TravelFeeCents,
		TravelLabel:       order.TravelLabel,
		SurfaceFeeCents:   &order.SurfaceFeeCents,
		SameDayFeeCents:   &order.SameDayFeeCents,
		GeneratorFeeCents: &order.GeneratorFeeCents,
		Waivers:           order.Waivers,
		Discounts:         order.Discounts,
		CustomFees:        order.CustomFees,
		SubtotalCents:     order.SubtotalCents,
		TaxCents:          order.TaxCents,
		TipCents:          order.TipCents,
		TotalCents:        order.TotalCents,
		DepositDueCents:   order.DepositDueCents,
		DepositPaidCents:  order.DepositPaidCents,
		EventDate:         order.EventDate,
		EventEndDate:      order.EventEndDate,
		Pickup:            order.Pickup,
	})
	return &summary, nil
}

// mutate loads, edits, reprices and saves an order. Closed orders reject
// invoice edits.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(*models.Order) error) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCompleted || order.Status == enums.OrderStatusCanceled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "closed orders cannot be modified")
	}

	if err := fn(order); err != nil {
		return nil, err
	}

	rules, err := s.rulesFor(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(order, rules); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
	}
	return saved, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	// Rows written before the normalization existed may still carry raw
	// event facts.
	normalizeEventColumns(order)
	return order, nil
}

// rulesFor prefers the order's snapshot. Orders created before snapshots
// existed fall back to the current rules.
func (s *service) rulesFor(ctx context.Context, order *models.Order) (*models.PricingRules, error) {
	if order.RulesSnapshot != nil {
		return order.RulesSnapshot, nil
	}
	rules, err := s.rules.Current(ctx)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pricing rules are not configured")
	}
	return rules, nil
}

// refresh recomputes every money column from the order's stored facts.
func (s *service) refresh(order *models.Order, rules *models.PricingRules) error {
	breakdown, err := pricing.Compute(pricing.Input{
		Items:              cartItems(order.Items),
		Event:              eventDetails(order),
		Rules:              rules,
		Miles:              order.TravelTotalMiles,
		Discounts:          order.Discounts,
		CustomFees:         order.CustomFees,
		Waivers:            order.Waivers,
		TipCents:           order.TipCents,
		CustomDepositCents: order.CustomDepositCents,
	})
	if err != nil {
		return err
	}

	order.SubtotalCents = breakdown.SubtotalCents
	order.TravelFeeCents = breakdown.Travel.FeeCents
	order.TravelIsFlatFee = breakdown.Travel.IsFlatFee
	order.TravelIsIncludedCity = breakdown.Travel.IsIncludedCity
	order.TravelLabel = breakdown.Travel.Label
	order.SurfaceFeeCents = breakdown.SurfaceFeeCents
	order.SameDayFeeCents = breakdown.SameDayFeeCents
	order.GeneratorFeeCents = breakdown.GeneratorFeeCents
	order.TaxCents = breakdown.TaxCents
	order.TotalCents = breakdown.TotalCents
	order.DepositDueCents = breakdown.DepositDueCents
	return nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Customer.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
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
	if input.TipCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tip must be non-negative")
	}
	if input.CustomDepositCents != nil && *input.CustomDepositCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom deposit must be non-negative")
	}
	return nil
}

func cartItems(items []models.OrderItem) []pricing.CartItem {
	out := make([]pricing.CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.CartItem{
			UnitID:         item.UnitID,
			Name:           item.Name,
			Mode:           item.Mode,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
		})
	}
	return out
}

// normalizeEventColumns applies the event invariants to the stored columns:
// commercial venues force same-day pickup, and same-day pickup collapses the
// event to a single day. The stored facts must match what the pricing
// pipeline charged, or reconstruction and summaries read the wrong inputs.
func normalizeEventColumns(order *models.Order) {
	normalized := eventDetails(order).Normalize()
	order.Pickup = normalized.Pickup
	order.EventEndDate = normalized.EventEndDate
}

func eventDetails(order *models.Order) pricing.EventDetails {
	return pricing.EventDetails{
		EventDate:     order.EventDate,
		EventEndDate:  order.EventEndDate,
		StartWindow:   order.StartWindow,
		EndWindow:     order.EndWindow,
		UntilEndOfDay: order.UntilEndOfDay,
		LocationType:  order.LocationType,
		City:          order.Address.City,
		Zip:           order.Address.PostalCode,
		Lat:           order.Address.Lat,
		Lng:           order.Address.Lng,
		Surface:       order.Surface,
		GeneratorQty:  order.GeneratorQty,
		Pickup:        order.Pickup,
	}
}

func reconstructionFacts(order *models.Order) pricing.ReconstructionFacts {
	return pricing.ReconstructionFacts{
		Miles:             order.TravelTotalMiles,
		Surface:           order.Surface,
		Pickup:            order.Pickup,
		GeneratorQty:      order.GeneratorQty,
		UnitCount:         pricing.UnitCount(cartItems(order.Items)),
		SubtotalCents:     order.SubtotalCents,
		TravelFeeCents:    order.TravelFeeCents,
		SurfaceFeeCents:   order.SurfaceFeeCents,
		SameDayFeeCents:   order.SameDayFeeCents,
		GeneratorFeeCents: order.GeneratorFeeCents,
		Discounts:         order.Discounts,
		CustomFees:        order.CustomFees,
		Waivers:           order.Waivers,
	}
}
