package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// Order is a persisted booking with its monetary breakdown snapshot. Fee
// columns store the currently effective values; a waived fee is stored as 0
// and its original amount is reconstructed from the event facts plus the
// rules snapshot.
type Order struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status enums.OrderStatus `gorm:"column:status;not null;default:'draft'"`

	CustomerName  string `gorm:"column:customer_name;not null"`
	CustomerEmail string `gorm:"column:customer_email"`
	CustomerPhone string `gorm:"column:customer_phone"`

	EventDate     time.Time              `gorm:"column:event_date;not null"`
	EventEndDate  time.Time              `gorm:"column:event_end_date;not null"`
	StartWindow   string                 `gorm:"column:start_window"`
	EndWindow     string                 `gorm:"column:end_window"`
	UntilEndOfDay bool                   `gorm:"column:until_end_of_day;not null;default:false"`
	LocationType  enums.LocationType     `gorm:"column:location_type;not null;default:'residential'"`
	Address       types.Address          `gorm:"column:address;type:jsonb;serializer:json"`
	Surface       enums.SurfaceType      `gorm:"column:surface;not null;default:'grass'"`
	GeneratorQty  int                    `gorm:"column:generator_qty;not null;default:0"`
	Pickup        enums.PickupPreference `gorm:"column:pickup_preference;not null;default:'next_day'"`

	TravelTotalMiles     *float64 `gorm:"column:travel_total_miles"`
	TravelIsFlatFee      bool     `gorm:"column:travel_is_flat_fee;not null;default:false"`
	TravelIsIncludedCity bool     `gorm:"column:travel_is_included_city;not null;default:false"`
	TravelLabel          string   `gorm:"column:travel_label"`

	SubtotalCents      int64  `gorm:"column:subtotal_cents;not null;default:0"`
	TravelFeeCents     int64  `gorm:"column:travel_fee_cents;not null;default:0"`
	SurfaceFeeCents    int64  `gorm:"column:surface_fee_cents;not null;default:0"`
	SameDayFeeCents    int64  `gorm:"column:same_day_fee_cents;not null;default:0"`
	GeneratorFeeCents  int64  `gorm:"column:generator_fee_cents;not null;default:0"`
	TaxCents           int64  `gorm:"column:tax_cents;not null;default:0"`
	TipCents           int64  `gorm:"column:tip_cents;not null;default:0"`
	TotalCents         int64  `gorm:"column:total_cents;not null;default:0"`
	DepositDueCents    int64  `gorm:"column:deposit_due_cents;not null;default:0"`
	CustomDepositCents *int64 `gorm:"column:custom_deposit_cents"`
	DepositPaidCents   int64  `gorm:"column:deposit_paid_cents;not null;default:0"`

	Discounts  types.Discounts  `gorm:"column:discounts;type:jsonb"`
	CustomFees types.CustomFees `gorm:"column:custom_fees;type:jsonb"`
	Waivers    types.FeeWaivers `gorm:"column:waivers;type:jsonb"`

	RulesSnapshot *PricingRules `gorm:"column:rules_snapshot;type:jsonb;serializer:json"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the gorm table name.
func (Order) TableName() string {
	return "orders"
}
