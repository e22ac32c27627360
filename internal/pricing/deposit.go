package pricing

import "github.com/bouncehq/rentals-backend/pkg/db/models"

// DefaultDepositCents is the per-unit deposit summed across the cart. The
// per-unit rate is an admin constant, independent of item price.
func DefaultDepositCents(items []CartItem, rules *models.PricingRules) int64 {
	if rules == nil {
		return 0
	}
	return int64(UnitCount(items)) * rules.DepositPerUnitCents
}

// DepositDueCents resolves the deposit, honoring a custom override when one
// is set. Zero is a legal override meaning no upfront payment is required.
func DepositDueCents(items []CartItem, custom *int64, rules *models.PricingRules) int64 {
	if custom != nil {
		if *custom < 0 {
			return 0
		}
		return *custom
	}
	return DefaultDepositCents(items, rules)
}
