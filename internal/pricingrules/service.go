package pricingrules

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/multierr"

	"github.com/bouncehq/rentals-backend/pkg/db/models"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

// Service exposes read and admin-update access to the pricing rules.
type Service interface {
	Current(ctx context.Context) (*models.PricingRules, error)
	Update(ctx context.Context, input UpdateInput) (*models.PricingRules, error)
	EnsureSeeded(ctx context.Context) (*models.PricingRules, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the pricing-rules service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing rules repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// UpdateInput carries a full replacement rules document. Partial updates are
// not supported: the admin screen always submits every field.
type UpdateInput struct {
	BaseRadiusMiles             float64             `json:"base_radius_miles"`
	PerMileCents                int64               `json:"per_mile_cents"`
	SurfaceSandbagFeeCents      int64               `json:"surface_sandbag_fee_cents"`
	ResidentialMultiplier       float64             `json:"residential_multiplier"`
	CommercialMultiplier        float64             `json:"commercial_multiplier"`
	GeneratorFeeSingleCents     int64               `json:"generator_fee_single_cents"`
	GeneratorFeeAdditionalCents int64               `json:"generator_fee_additional_cents"`
	SameDayFlatFeeCents         int64               `json:"same_day_flat_fee_cents"`
	SameDayTiers                types.SameDayTiers  `json:"same_day_tiers"`
	IncludedCities              []string            `json:"included_cities"`
	ZoneOverrides               types.ZoneOverrides `json:"zone_overrides"`
	DepositPerUnitCents         int64               `json:"deposit_per_unit_cents"`
	OvernightHolidayOnly        bool                `json:"overnight_holiday_only"`
	ExtraDayPercent             float64             `json:"extra_day_percent"`
}

// Current returns the active rules row, nil when none is configured.
func (s *service) Current(ctx context.Context) (*models.PricingRules, error) {
	rules, err := s.repo.FindCurrent(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pricing rules")
	}
	return rules, nil
}

// Update validates and persists a replacement rules document, creating the
// row on first use.
func (s *service) Update(ctx context.Context, input UpdateInput) (*models.PricingRules, error) {
	if err := validate(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pricing rules").
			WithDetails(validationDetails(err))
	}

	current, err := s.repo.FindCurrent(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pricing rules")
	}

	if current == nil {
		created, err := s.repo.Create(ctx, applyInput(&models.PricingRules{}, input))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating pricing rules")
		}
		if s.logg != nil {
			s.logg.Info(ctx, "pricing rules created")
		}
		return created, nil
	}

	updated, err := s.repo.Update(ctx, applyInput(current, input))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating pricing rules")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "pricing rules updated")
	}
	return updated, nil
}

// EnsureSeeded creates the default rules row when none exists. Used at boot
// so quoting never runs against a missing configuration.
func (s *service) EnsureSeeded(ctx context.Context) (*models.PricingRules, error) {
	current, err := s.repo.FindCurrent(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pricing rules")
	}
	if current != nil {
		return current, nil
	}

	seeded, err := s.repo.Create(ctx, DefaultRules())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seeding pricing rules")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "pricing rules seeded with defaults")
	}
	return seeded, nil
}

// DefaultRules returns the out-of-the-box configuration used until an admin
// saves their own.
func DefaultRules() *models.PricingRules {
	return &models.PricingRules{
		BaseRadiusMiles:             20,
		PerMileCents:                250,
		SurfaceSandbagFeeCents:      5000,
		ResidentialMultiplier:       1,
		CommercialMultiplier:        1,
		GeneratorFeeSingleCents:     10000,
		GeneratorFeeAdditionalCents: 7500,
		SameDayFlatFeeCents:         7500,
		DepositPerUnitCents:         5000,
		ExtraDayPercent:             15,
	}
}

func applyInput(rules *models.PricingRules, input UpdateInput) *models.PricingRules {
	rules.BaseRadiusMiles = input.BaseRadiusMiles
	rules.PerMileCents = input.PerMileCents
	rules.SurfaceSandbagFeeCents = input.SurfaceSandbagFeeCents
	rules.ResidentialMultiplier = input.ResidentialMultiplier
	rules.CommercialMultiplier = input.CommercialMultiplier
	rules.GeneratorFeeSingleCents = input.GeneratorFeeSingleCents
	rules.GeneratorFeeAdditionalCents = input.GeneratorFeeAdditionalCents
	rules.SameDayFlatFeeCents = input.SameDayFlatFeeCents
	rules.SameDayTiers = input.SameDayTiers
	rules.IncludedCities = pq.StringArray(input.IncludedCities)
	rules.ZoneOverrides = input.ZoneOverrides
	rules.DepositPerUnitCents = input.DepositPerUnitCents
	rules.OvernightHolidayOnly = input.OvernightHolidayOnly
	rules.ExtraDayPercent = input.ExtraDayPercent
	return rules
}

func validate(input UpdateInput) error {
	var err error

	if input.BaseRadiusMiles < 0 {
		err = multierr.Append(err, fmt.Errorf("base_radius_miles must be non-negative"))
	}
	if input.PerMileCents < 0 {
		err = multierr.Append(err, fmt.Errorf("per_mile_cents must be non-negative"))
	}
	if input.SurfaceSandbagFeeCents < 0 {
		err = multierr.Append(err, fmt.Errorf("surface_sandbag_fee_cents must be non-negative"))
	}
	if input.ResidentialMultiplier <= 0 {
		err = multierr.Append(err, fmt.Errorf("residential_multiplier must be positive"))
	}
	if input.CommercialMultiplier <= 0 {
		err = multierr.Append(err, fmt.Errorf("commercial_multiplier must be positive"))
	}
	if input.GeneratorFeeSingleCents < 0 || input.GeneratorFeeAdditionalCents < 0 {
		err = multierr.Append(err, fmt.Errorf("generator fees must be non-negative"))
	}
	if input.SameDayFlatFeeCents < 0 {
		err = multierr.Append(err, fmt.Errorf("same_day_flat_fee_cents must be non-negative"))
	}
	if input.DepositPerUnitCents < 0 {
		err = multierr.Append(err, fmt.Errorf("deposit_per_unit_cents must be non-negative"))
	}
	if input.ExtraDayPercent < 0 || input.ExtraDayPercent > 100 {
		err = multierr.Append(err, fmt.Errorf("extra_day_percent must be between 0 and 100"))
	}

	for i, tier := range input.SameDayTiers {
		if tier.MinUnits < 0 || tier.MinSubtotalCents < 0 || tier.FeeCents < 0 {
			err = multierr.Append(err, fmt.Errorf("same_day_tiers[%d] must have non-negative thresholds and fee", i))
		}
	}

	for i, city := range input.IncludedCities {
		if strings.TrimSpace(city) == "" {
			err = multierr.Append(err, fmt.Errorf("included_cities[%d] must not be blank", i))
		}
	}

	for i, zone := range input.ZoneOverrides {
		if strings.TrimSpace(zone.Zip) == "" {
			err = multierr.Append(err, fmt.Errorf("zone_overrides[%d] requires a zip", i))
		}
		if zone.FeeCents < 0 {
			err = multierr.Append(err, fmt.Errorf("zone_overrides[%d] fee must be non-negative", i))
		}
	}

	return err
}

func validationDetails(err error) []string {
	errs := multierr.Errors(err)
	details := make([]string, 0, len(errs))
	for _, e := range errs {
		details = append(details, e.Error())
	}
	return details
}
