package pricing

import (
	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// DiscountTotalCents sums the discount contributions. Percentage discounts
// always resolve against the pre-discount subtotal, never a cumulative base.
func DiscountTotalCents(subtotalCents int64, discounts types.Discounts) int64 {
	var total int64
	for _, discount := range discounts {
		total += discount.ValueAgainst(subtotalCents)
	}
	return total
}

// SubtotalCents totals the cart lines, applies the extra-day percentage for
// each day beyond the first, then the location-type multiplier.
func SubtotalCents(items []CartItem, event EventDetails, residentialMult, commercialMult float64, extraDayPercent float64) int64 {
	var base int64
	for _, item := range items {
		base += item.LineTotalCents()
	}

	if extraDays := event.ExtraDays(); extraDays > 0 && extraDayPercent > 0 {
		perDay := mulPercent(base, extraDayPercent)
		base += perDay * int64(extraDays)
	}

	mult := residentialMult
	if event.LocationType == enums.LocationCommercial {
		mult = commercialMult
	}
	return scale(base, mult)
}
