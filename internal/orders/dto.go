package orders

import (
	"time"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/pkg/db/models"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// CustomerInput identifies who the booking is for.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// EventInput carries the logistics facts captured at booking time.
type EventInput struct {
	EventDate     time.Time
	EventEndDate  time.Time
	StartWindow   string
	EndWindow     string
	UntilEndOfDay bool
	LocationType  enums.LocationType
	Address       types.Address
	Surface       enums.SurfaceType
	GeneratorQty  int
	Pickup        enums.PickupPreference
}

// CreateInput is everything needed to book an order.
type CreateInput struct {
	Customer           CustomerInput
	Items              []pricing.CartItem
	Event              EventInput
	Discounts          types.Discounts
	CustomFees         types.CustomFees
	TipCents           int64
	CustomDepositCents *int64
}

// WaiverInput toggles a single fee waiver.
type WaiverInput struct {
	Kind   enums.FeeKind
	Waived bool
	Reason string
}

// OrderDetail pairs the stored order with the pre-waiver fee amounts
// reconstructed from its facts.
type OrderDetail struct {
	Order          *models.Order          `json:"order"`
	Reconstruction pricing.Reconstruction `json:"original_fees"`
}
