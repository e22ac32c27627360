package pricing

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"

	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

func baseInput() Input {
	return Input{
		Items: []CartItem{
			{UnitID: uuid.New(), Name: "Castle Combo", UnitPriceCents: 10000, Qty: 1},
			{UnitID: uuid.New(), Name: "Dual Lane Slide", UnitPriceCents: 5000, Qty: 1},
		},
		Event: EventDetails{
			EventDate:    day(2026, 7, 4),
			EventEndDate: day(2026, 7, 4),
			LocationType: enums.LocationResidential,
			Surface:      enums.SurfaceGrass,
			Pickup:       enums.PickupNextDay,
			City:         "Livonia",
			Zip:          "48150",
		},
		Rules: testRules(),
	}
}

func TestComputeQuoteWithDiscountAndCustomFee(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Discounts = types.Discounts{types.PercentDiscount("July special", 10)}
	in.CustomFees = types.CustomFees{{Name: "Stairs carry", AmountCents: 2000}}

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.SubtotalCents != 15000 {
		t.Fatalf("subtotal: expected 15000, got %d", b.SubtotalCents)
	}
	if b.DiscountTotalCents != 1500 {
		t.Fatalf("discount: expected 1500, got %d", b.DiscountTotalCents)
	}
	if b.CustomFeeTotalCents != 2000 {
		t.Fatalf("custom fees: expected 2000, got %d", b.CustomFeeTotalCents)
	}
	if b.TaxableCents != 15500 {
		t.Fatalf("taxable: expected 15500, got %d", b.TaxableCents)
	}
	if b.TaxCents != 930 {
		t.Fatalf("tax: expected 930, got %d", b.TaxCents)
	}
	if b.TotalCents != 16430 {
		t.Fatalf("total: expected 16430, got %d", b.TotalCents)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Event.Surface = enums.SurfaceCement
	in.Event.GeneratorQty = 2
	miles := 25.0
	in.Miles = &miles
	in.Discounts = types.Discounts{types.FixedDiscount("Referral", 2500)}

	first, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different breakdowns:\n%+v\n%+v", first, second)
	}
}

func TestComputeSameDayFeeExcludedFromTaxBase(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Event.Pickup = enums.PickupSameDay

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.SameDayFeeCents != 7500 {
		t.Fatalf("expected same-day fee 7500, got %d", b.SameDayFeeCents)
	}
	if b.TaxableCents != 15000 {
		t.Fatalf("same-day fee leaked into the tax base: taxable %d", b.TaxableCents)
	}
	if b.TaxCents != 900 {
		t.Fatalf("expected tax 900, got %d", b.TaxCents)
	}
	// The fee still charges into the total.
	if b.TotalCents != 15000+7500+900 {
		t.Fatalf("expected total %d, got %d", 15000+7500+900, b.TotalCents)
	}
}

func TestComputeCommercialForcesSameDay(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Event.LocationType = enums.LocationCommercial
	in.Event.Pickup = enums.PickupNextDay
	in.Event.EventEndDate = day(2026, 7, 6)
	in.Rules.CommercialMultiplier = 1

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.SameDayFeeCents == 0 {
		t.Fatal("commercial events must be charged same-day pickup")
	}
	if b.IsMultiDay {
		t.Fatal("same-day pickup must collapse the event to one day")
	}
}

func TestComputeWaivedFeesContributeZero(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Event.Surface = enums.SurfaceCement
	in.Event.GeneratorQty = 1
	in.Waivers = types.FeeWaivers{
		enums.FeeKindSurface: {Waived: true, Reason: "loyal customer"},
	}

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.SurfaceFeeCents != 0 {
		t.Fatalf("waived surface fee should be zero, got %d", b.SurfaceFeeCents)
	}
	// The generator fee is untouched and the tax base uses the zeroed
	// surface value.
	if b.GeneratorFeeCents != 10000 {
		t.Fatalf("generator fee changed: %d", b.GeneratorFeeCents)
	}
	if b.TaxableCents != 15000+10000 {
		t.Fatalf("tax base must use effective fees, got %d", b.TaxableCents)
	}
}

func TestComputeTaxWaiver(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Waivers = types.FeeWaivers{enums.FeeKindTax: {Waived: true, Reason: "tax-exempt org"}}

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TaxCents != 0 {
		t.Fatalf("waived tax should be zero, got %d", b.TaxCents)
	}
	if b.TaxableCents != 15000 {
		t.Fatalf("taxable base must still be reported, got %d", b.TaxableCents)
	}
	if b.TotalCents != 15000 {
		t.Fatalf("expected total without tax, got %d", b.TotalCents)
	}
}

func TestComputeDepositDefaultAndOverride(t *testing.T) {
	t.Parallel()

	in := baseInput()

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two units at 5000/unit.
	if b.DepositDueCents != 10000 {
		t.Fatalf("expected default deposit 10000, got %d", b.DepositDueCents)
	}

	zero := int64(0)
	in.CustomDepositCents = &zero
	b, err = Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.DepositDueCents != 0 {
		t.Fatalf("zero override must stick, got %d", b.DepositDueCents)
	}
	if b.BalanceDueCents != b.TotalCents {
		t.Fatalf("with no deposit the balance equals the total, got %d vs %d", b.BalanceDueCents, b.TotalCents)
	}
}

func TestComputeRequiresRules(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Rules = nil

	_, err := Compute(in)
	if err == nil {
		t.Fatal("expected error when rules are missing")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComputeNegativeTaxBaseFloorsAtZero(t *testing.T) {
	t.Parallel()

	in := baseInput()
	in.Discounts = types.Discounts{types.FixedDiscount("Comp", 20000)}

	b, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TaxableCents != 0 {
		t.Fatalf("tax base must floor at zero, got %d", b.TaxableCents)
	}
	if b.TaxCents != 0 {
		t.Fatalf("expected zero tax, got %d", b.TaxCents)
	}
}
