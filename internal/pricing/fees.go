package pricing

import (
	"github.com/bouncehq/rentals-backend/pkg/db/models"
	"github.com/bouncehq/rentals-backend/pkg/enums"
)

// SurfaceFeeCents returns the flat sandbag fee for surfaces that cannot be
// staked, 0 otherwise.
func SurfaceFeeCents(surface enums.SurfaceType, rules *models.PricingRules) int64 {
	if rules == nil || !surface.RequiresSandbags() {
		return 0
	}
	return rules.SurfaceSandbagFeeCents
}

// SameDayFeeCents resolves the same-day-pickup fee. Next-day pickups are
// free. The tier matrix, when configured, is evaluated top to bottom and the
// first matching row wins; with no matching row the flat amount applies.
func SameDayFeeCents(pickup enums.PickupPreference, unitCount int, generatorQty int, subtotalCents int64, rules *models.PricingRules) int64 {
	if rules == nil || pickup != enums.PickupSameDay {
		return 0
	}
	hasGenerator := generatorQty > 0
	for _, tier := range rules.SameDayTiers {
		if tier.Matches(unitCount, hasGenerator, subtotalCents) {
			return tier.FeeCents
		}
	}
	return rules.SameDayFlatFeeCents
}

// GeneratorFeeCents charges the single-generator rate for the first unit and
// the additional rate for each one after it.
func GeneratorFeeCents(qty int, rules *models.PricingRules) int64 {
	if rules == nil || qty <= 0 {
		return 0
	}
	fee := rules.GeneratorFeeSingleCents
	if qty > 1 {
		fee += int64(qty-1) * rules.GeneratorFeeAdditionalCents
	}
	return fee
}
