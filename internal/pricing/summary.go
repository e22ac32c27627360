package pricing

import (
	"time"

	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// SummaryInput feeds the summary builder. Fee pointers distinguish "not
// applicable" (nil, omitted from the display) from an explicit zero: a
// waived fee must still render as a zeroed line.
type SummaryInput struct {
	Items []CartItem

	TravelFeeCents    *int64
	TravelLabel       string
	SurfaceFeeCents   *int64
	SameDayFeeCents   *int64
	GeneratorFeeCents *int64
	Waivers           types.FeeWaivers

	Discounts  types.Discounts
	CustomFees types.CustomFees

	SubtotalCents    int64
	TaxCents         int64
	TipCents         int64
	TotalCents       int64
	DepositDueCents  int64
	DepositPaidCents int64

	EventDate    time.Time
	EventEndDate time.Time
	Pickup       enums.PickupPreference
}

// SummaryItem is one rendered cart line.
type SummaryItem struct {
	Name           string           `json:"name"`
	Mode           enums.RentalMode `json:"mode"`
	Qty            int              `json:"qty"`
	UnitPriceCents int64            `json:"unit_price_cents"`
	LineTotalCents int64            `json:"line_total_cents"`
}

// FeeLine is one rendered fee. Waived lines carry Waived=true so screens
// can strike them through while still showing the zero amount.
type FeeLine struct {
	Kind        enums.FeeKind `json:"kind"`
	Name        string        `json:"name"`
	AmountCents int64         `json:"amount_cents"`
	Waived      bool          `json:"waived"`
	Detail      string        `json:"detail,omitempty"`
}

// DiscountLine is one rendered discount with its resolved amount.
type DiscountLine struct {
	Name        string  `json:"name"`
	Percent     float64 `json:"percent,omitempty"`
	AmountCents int64   `json:"amount_cents"`
}

// OrderSummary is the presentation-ready breakdown consumed by quote
// screens, the invoice builder, printable invoices, and order detail. Every
// rendering surface builds it through BuildSummary so presentation never
// drifts from computation.
type OrderSummary struct {
	Items      []SummaryItem    `json:"items"`
	Fees       []FeeLine        `json:"fees"`
	Discounts  []DiscountLine   `json:"discounts"`
	CustomFees []types.CustomFee `json:"custom_fees"`

	SubtotalCents        int64 `json:"subtotal_cents"`
	TotalFeesCents       int64 `json:"total_fees_cents"`
	TotalDiscountsCents  int64 `json:"total_discounts_cents"`
	TotalCustomFeesCents int64 `json:"total_custom_fees_cents"`
	TaxableCents         int64 `json:"taxable_cents"`
	TaxCents             int64 `json:"tax_cents"`
	TipCents             int64 `json:"tip_cents"`
	TotalCents           int64 `json:"total_cents"`
	DepositDueCents      int64 `json:"deposit_due_cents"`
	DepositPaidCents     int64 `json:"deposit_paid_cents"`
	BalanceDueCents      int64 `json:"balance_due_cents"`

	Pickup     enums.PickupPreference `json:"pickup_preference"`
	IsMultiDay bool                   `json:"is_multi_day"`
}

// BuildSummary assembles the display breakdown. It is pure: all money
// values come in through the input and are only aggregated here.
func BuildSummary(in SummaryInput) OrderSummary {
	summary := OrderSummary{
		SubtotalCents:    in.SubtotalCents,
		TaxCents:         in.TaxCents,
		TipCents:         in.TipCents,
		TotalCents:       in.TotalCents,
		DepositDueCents:  in.DepositDueCents,
		DepositPaidCents: in.DepositPaidCents,
		BalanceDueCents:  in.TotalCents - in.DepositDueCents,
		Pickup:           in.Pickup,
		IsMultiDay:       !in.EventEndDate.IsZero() && !in.EventEndDate.Equal(in.EventDate),
	}

	for _, item := range in.Items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		summary.Items = append(summary.Items, SummaryItem{
			Name:           item.Name,
			Mode:           item.Mode,
			Qty:            qty,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents(),
		})
	}

	summary.Fees = appendFeeLine(summary.Fees, enums.FeeKindTravel, "Travel fee", in.TravelFeeCents, in.Waivers, in.TravelLabel)
	summary.Fees = appendFeeLine(summary.Fees, enums.FeeKindSurface, "Surface (sandbag) fee", in.SurfaceFeeCents, in.Waivers, "")
	summary.Fees = appendFeeLine(summary.Fees, enums.FeeKindSameDay, "Same-day pickup fee", in.SameDayFeeCents, in.Waivers, "")
	summary.Fees = appendFeeLine(summary.Fees, enums.FeeKindGenerator, "Generator fee", in.GeneratorFeeCents, in.Waivers, "")

	var taxedFees int64
	for _, line := range summary.Fees {
		summary.TotalFeesCents += line.AmountCents
		if line.Kind != enums.FeeKindSameDay {
			taxedFees += line.AmountCents
		}
	}

	for _, discount := range in.Discounts {
		summary.Discounts = append(summary.Discounts, DiscountLine{
			Name:        discount.Name,
			Percent:     discount.Percent(),
			AmountCents: discount.ValueAgainst(in.SubtotalCents),
		})
	}
	for _, line := range summary.Discounts {
		summary.TotalDiscountsCents += line.AmountCents
	}

	summary.CustomFees = in.CustomFees
	summary.TotalCustomFeesCents = in.CustomFees.TotalCents()

	summary.TaxableCents = TaxableCents(in.SubtotalCents, taxedFees, summary.TotalDiscountsCents, summary.TotalCustomFeesCents)

	return summary
}

// appendFeeLine adds a fee to the display list. A nil amount means the fee
// does not apply and is omitted; zero still renders so waived lines stay
// visible.
func appendFeeLine(lines []FeeLine, kind enums.FeeKind, name string, amount *int64, waivers types.FeeWaivers, detail string) []FeeLine {
	if amount == nil {
		return lines
	}
	return append(lines, FeeLine{
		Kind:        kind,
		Name:        name,
		AmountCents: *amount,
		Waived:      waivers.IsWaived(kind),
		Detail:      detail,
	})
}
