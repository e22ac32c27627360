package pricing

import (
	"github.com/bouncehq/rentals-backend/pkg/db/models"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// ReconstructionFacts are the persisted order fields that survive a waiver.
// A waived fee is stored as 0; these facts plus the pricing rules are enough
// to recompute what the fee would have been.
type ReconstructionFacts struct {
	Miles        *float64
	Surface      enums.SurfaceType
	Pickup       enums.PickupPreference
	GeneratorQty int
	UnitCount    int

	SubtotalCents int64

	// Stored effective fee values. Waived lines hold 0 here.
	TravelFeeCents    int64
	SurfaceFeeCents   int64
	SameDayFeeCents   int64
	GeneratorFeeCents int64

	Discounts  types.Discounts
	CustomFees types.CustomFees
	Waivers    types.FeeWaivers
}

// Reconstruction holds the pre-waiver amounts. Fee lines that were never
// waived carry their stored values unchanged; TaxCents is always re-derived
// from the reconstructed lines, so it reflects the tax as if no fee had been
// waived.
type Reconstruction struct {
	TravelFeeCents    int64
	SurfaceFeeCents   int64
	SameDayFeeCents   int64
	GeneratorFeeCents int64
	TaxCents          int64
}

// FeeCents returns the reconstructed amount for the named fee.
func (r Reconstruction) FeeCents(kind enums.FeeKind) int64 {
	switch kind {
	case enums.FeeKindTravel:
		return r.TravelFeeCents
	case enums.FeeKindSurface:
		return r.SurfaceFeeCents
	case enums.FeeKindSameDay:
		return r.SameDayFeeCents
	case enums.FeeKindGenerator:
		return r.GeneratorFeeCents
	case enums.FeeKindTax:
		return r.TaxCents
	}
	return 0
}

// Reconstruct recomputes the original amount for every waived fee from the
// surviving facts. Insufficient history (unknown miles, zone overrides lost
// to time) degrades to treating the fee as legitimately zero rather than
// erroring.
func Reconstruct(facts ReconstructionFacts, rules *models.PricingRules) Reconstruction {
	r := Reconstruction{
		TravelFeeCents:    facts.TravelFeeCents,
		SurfaceFeeCents:   facts.SurfaceFeeCents,
		SameDayFeeCents:   facts.SameDayFeeCents,
		GeneratorFeeCents: facts.GeneratorFeeCents,
	}
	if rules == nil {
		return r
	}

	if facts.Waivers.IsWaived(enums.FeeKindTravel) {
		// Only the per-mile formula is recoverable. Flat zones and free
		// cities are indistinguishable after the fact, so unknown miles
		// mean no travel fee.
		r.TravelFeeCents = 0
		if facts.Miles != nil && *facts.Miles > 0 && *facts.Miles > rules.BaseRadiusMiles {
			r.TravelFeeCents = mulMiles(*facts.Miles-rules.BaseRadiusMiles, rules.PerMileCents)
		}
	}

	if facts.Waivers.IsWaived(enums.FeeKindSurface) {
		r.SurfaceFeeCents = SurfaceFeeCents(facts.Surface, rules)
	}

	if facts.Waivers.IsWaived(enums.FeeKindSameDay) {
		r.SameDayFeeCents = SameDayFeeCents(facts.Pickup, facts.UnitCount, facts.GeneratorQty, facts.SubtotalCents, rules)
	}

	if facts.Waivers.IsWaived(enums.FeeKindGenerator) {
		r.GeneratorFeeCents = GeneratorFeeCents(facts.GeneratorQty, rules)
	}

	// Tax rebuilds from the reconstructed lines with the standard formula.
	discountTotal := DiscountTotalCents(facts.SubtotalCents, facts.Discounts)
	taxable := TaxableCents(
		facts.SubtotalCents,
		r.TravelFeeCents+r.SurfaceFeeCents+r.GeneratorFeeCents,
		discountTotal,
		facts.CustomFees.TotalCents(),
	)
	r.TaxCents = TaxCents(taxable)

	return r
}
