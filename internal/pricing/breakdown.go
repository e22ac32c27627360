package pricing

import (
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"

	"github.com/bouncehq/rentals-backend/pkg/db/models"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// taxRateBps is the flat sales tax, 6%.
const taxRateBps = 600

// Input is everything a breakdown computation reads. The engine keeps no
// state: identical inputs always produce identical breakdowns.
type Input struct {
	Items      []CartItem
	Event      EventDetails
	Rules      *models.PricingRules
	Miles      *float64 // resolved driving distance; nil when unknown
	Discounts  types.Discounts
	CustomFees types.CustomFees
	Waivers    types.FeeWaivers
	TipCents   int64

	// CustomDepositCents overrides the computed default deposit when set;
	// 0 is a legal override.
	CustomDepositCents *int64
}

// Breakdown is the computed monetary result. Fee fields hold the currently
// effective amounts: a waived fee contributes 0 here and is reconstructable
// through the waiver reconstructor.
type Breakdown struct {
	SubtotalCents int64 `json:"subtotal_cents"`

	Travel            TravelQuote `json:"travel"`
	SurfaceFeeCents   int64       `json:"surface_fee_cents"`
	SameDayFeeCents   int64       `json:"same_day_fee_cents"`
	GeneratorFeeCents int64       `json:"generator_fee_cents"`

	DiscountTotalCents  int64 `json:"discount_total_cents"`
	CustomFeeTotalCents int64 `json:"custom_fee_total_cents"`

	TaxableCents int64 `json:"taxable_cents"`
	TaxCents     int64 `json:"tax_cents"`
	TipCents     int64 `json:"tip_cents"`
	TotalCents   int64 `json:"total_cents"`

	DepositDueCents int64 `json:"deposit_due_cents"`
	BalanceDueCents int64 `json:"balance_due_cents"`

	IsMultiDay bool `json:"is_multi_day"`
}

// Compute runs the whole pipeline from raw inputs. Every fee is derived from
// the inputs alone, never from a previous breakdown, so recomputation after
// any input change is idempotent. The only error condition is missing
// pricing rules.
func Compute(in Input) (Breakdown, error) {
	if in.Rules == nil {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeStateConflict, "pricing rules are not configured")
	}

	event := in.Event.Normalize()
	rules := in.Rules

	subtotal := SubtotalCents(in.Items, event, rules.ResidentialMultiplier, rules.CommercialMultiplier, rules.ExtraDayPercent)

	miles := 0.0
	if in.Miles != nil {
		miles = *in.Miles
	}
	travel := ResolveTravelFee(miles, event.City, event.Zip, rules)

	surface := SurfaceFeeCents(event.Surface, rules)
	generator := GeneratorFeeCents(event.GeneratorQty, rules)
	sameDay := SameDayFeeCents(event.Pickup, UnitCount(in.Items), event.GeneratorQty, subtotal, rules)

	// A waiver zeroes only its own fee's contribution. Tax always uses the
	// currently effective values.
	if in.Waivers.IsWaived(enums.FeeKindTravel) {
		travel.FeeCents = 0
	}
	if in.Waivers.IsWaived(enums.FeeKindSurface) {
		surface = 0
	}
	if in.Waivers.IsWaived(enums.FeeKindGenerator) {
		generator = 0
	}
	if in.Waivers.IsWaived(enums.FeeKindSameDay) {
		sameDay = 0
	}

	discountTotal := DiscountTotalCents(subtotal, in.Discounts)
	customFeeTotal := in.CustomFees.TotalCents()

	b := Breakdown{
		SubtotalCents:       subtotal,
		Travel:              travel,
		SurfaceFeeCents:     surface,
		SameDayFeeCents:     sameDay,
		GeneratorFeeCents:   generator,
		DiscountTotalCents:  discountTotal,
		CustomFeeTotalCents: customFeeTotal,
		TipCents:            in.TipCents,
		IsMultiDay:          event.IsMultiDay(),
	}

	b.TaxableCents = TaxableCents(subtotal, travel.FeeCents+surface+generator, discountTotal, customFeeTotal)
	if !in.Waivers.IsWaived(enums.FeeKindTax) {
		b.TaxCents = TaxCents(b.TaxableCents)
	}

	b.TotalCents = subtotal +
		travel.FeeCents + surface + generator + sameDay -
		discountTotal + customFeeTotal +
		b.TaxCents + in.TipCents

	b.DepositDueCents = DepositDueCents(in.Items, in.CustomDepositCents, rules)
	b.BalanceDueCents = b.TotalCents - b.DepositDueCents

	return b, nil
}

// TaxableCents is the sales-tax base: subtotal plus the taxed automatic fees
// (travel, surface, generator) plus custom fees, less discounts, floored at
// zero. The same-day-pickup fee is charged but never taxed.
func TaxableCents(subtotalCents, automaticFeeCents, discountTotalCents, customFeeTotalCents int64) int64 {
	taxable := subtotalCents + automaticFeeCents - discountTotalCents + customFeeTotalCents
	if taxable < 0 {
		return 0
	}
	return taxable
}

// TaxCents applies the flat tax rate to the taxable base.
func TaxCents(taxableCents int64) int64 {
	return mulRate(taxableCents, taxRateBps)
}
