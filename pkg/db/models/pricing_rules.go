package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bouncehq/rentals-backend/pkg/types"
)

// PricingRules is the admin-configured pricing record, one row per tenant.
// The computation engine treats it as read-only.
type PricingRules struct {
	ID                          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BaseRadiusMiles             float64             `gorm:"column:base_radius_miles;not null;default:0" json:"base_radius_miles"`
	PerMileCents                int64               `gorm:"column:per_mile_cents;not null;default:0" json:"per_mile_cents"`
	SurfaceSandbagFeeCents      int64               `gorm:"column:surface_sandbag_fee_cents;not null;default:0" json:"surface_sandbag_fee_cents"`
	ResidentialMultiplier       float64             `gorm:"column:residential_multiplier;not null;default:1" json:"residential_multiplier"`
	CommercialMultiplier        float64             `gorm:"column:commercial_multiplier;not null;default:1" json:"commercial_multiplier"`
	GeneratorFeeSingleCents     int64               `gorm:"column:generator_fee_single_cents;not null;default:0" json:"generator_fee_single_cents"`
	GeneratorFeeAdditionalCents int64               `gorm:"column:generator_fee_additional_cents;not null;default:0" json:"generator_fee_additional_cents"`
	SameDayFlatFeeCents         int64               `gorm:"column:same_day_flat_fee_cents;not null;default:0" json:"same_day_flat_fee_cents"`
	SameDayTiers                types.SameDayTiers  `gorm:"column:same_day_tiers;type:jsonb" json:"same_day_tiers"`
	IncludedCities              pq.StringArray      `gorm:"column:included_cities;type:text[]" json:"included_cities"`
	ZoneOverrides               types.ZoneOverrides `gorm:"column:zone_overrides;type:jsonb" json:"zone_overrides"`
	DepositPerUnitCents         int64               `gorm:"column:deposit_per_unit_cents;not null;default:0" json:"deposit_per_unit_cents"`
	OvernightHolidayOnly        bool                `gorm:"column:overnight_holiday_only;not null;default:false" json:"overnight_holiday_only"`
	ExtraDayPercent             float64             `gorm:"column:extra_day_percent;not null;default:0" json:"extra_day_percent"`
	CreatedAt                   time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt                   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the gorm table name.
func (PricingRules) TableName() string {
	return "pricing_rules"
}
