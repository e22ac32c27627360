package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/bouncehq/rentals-backend/pkg/enums"
)

// CartItem is one rentable unit in a quote or invoice session. The unit
// price is admin-adjustable, so it travels with the item rather than being
// looked up at compute time.
type CartItem struct {
	UnitID         uuid.UUID
	Name           string
	Mode           enums.RentalMode
	UnitPriceCents int64
	Qty            int
}

// LineTotalCents is the single-day line total for the item.
func (c CartItem) LineTotalCents() int64 {
	qty := c.Qty
	if qty < 1 {
		qty = 1
	}
	return c.UnitPriceCents * int64(qty)
}

// EventDetails carries the logistics facts the fee pipeline reads.
type EventDetails struct {
	EventDate     time.Time
	EventEndDate  time.Time
	StartWindow   string
	EndWindow     string
	UntilEndOfDay bool
	LocationType  enums.LocationType
	City          string
	Zip           string
	Lat           float64
	Lng           float64
	Surface       enums.SurfaceType
	GeneratorQty  int
	Pickup        enums.PickupPreference
}

// Normalize enforces the event invariants: commercial venues always get
// same-day pickup, and same-day pickup collapses the event to one day.
func (e EventDetails) Normalize() EventDetails {
	if e.LocationType == enums.LocationCommercial {
		e.Pickup = enums.PickupSameDay
	}
	if e.Pickup == enums.PickupSameDay {
		e.EventEndDate = e.EventDate
	}
	if e.EventEndDate.IsZero() {
		e.EventEndDate = e.EventDate
	}
	return e
}

// ExtraDays counts calendar days beyond the first event day. Same-day
// pickups are always single-day after Normalize.
func (e EventDetails) ExtraDays() int {
	if e.EventDate.IsZero() || e.EventEndDate.IsZero() {
		return 0
	}
	start := e.EventDate.Truncate(24 * time.Hour)
	end := e.EventEndDate.Truncate(24 * time.Hour)
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / (24 * time.Hour))
}

// IsMultiDay reports whether the event spans more than one calendar day.
func (e EventDetails) IsMultiDay() bool {
	return e.ExtraDays() > 0
}

// UnitCount totals the quantities across cart items.
func UnitCount(items []CartItem) int {
	count := 0
	for _, item := range items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		count += qty
	}
	return count
}
