package pricingrules

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bouncehq/rentals-backend/pkg/db/models"
)

// Repository defines persistence operations for the pricing rules record.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCurrent(ctx context.Context) (*models.PricingRules, error)
	Create(ctx context.Context, rules *models.PricingRules) (*models.PricingRules, error)
	Update(ctx context.Context, rules *models.PricingRules) (*models.PricingRules, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing-rules repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindCurrent returns the active rules row, nil when none has been
// configured yet.
func (r *repository) FindCurrent(ctx context.Context) (*models.PricingRules, error) {
	var rules models.PricingRules
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&rules).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rules, nil
}

func (r *repository) Create(ctx context.Context, rules *models.PricingRules) (*models.PricingRules, error) {
	if err := r.db.WithContext(ctx).Create(rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) Update(ctx context.Context, rules *models.PricingRules) (*models.PricingRules, error) {
	if err := r.db.WithContext(ctx).Save(rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
