package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bouncehq/rentals-backend/pkg/enums"
)

// OrderItem is an immutable line item snapshotted from the cart at booking
// time. Price edits after persistence happen on the order, never in place.
type OrderItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	UnitID         uuid.UUID        `gorm:"column:unit_id;type:uuid;not null"`
	Name           string           `gorm:"column:name;not null"`
	Mode           enums.RentalMode `gorm:"column:mode;not null;default:'dry'"`
	UnitPriceCents int64            `gorm:"column:unit_price_cents;not null"`
	Qty            int              `gorm:"column:qty;not null;default:1"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the gorm table name.
func (OrderItem) TableName() string {
	return "order_items"
}
