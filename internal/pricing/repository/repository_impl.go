package repository

import (
	"context"
	"errors"

	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	"gorm.io/gorm"
)

type configRepo struct{}

func ProvideConfig() pricingdomain.ConfigRepository {
	return &configRepo{}
}

func (r *configRepo) Latest(ctx context.Context, db *gorm.DB) (*pricingdomain.Config, error) {
	var cfg pricingdomain.Config
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *configRepo) Insert(ctx context.Context, db *gorm.DB, cfg *pricingdomain.Config) error {
	return db.WithContext(ctx).Create(cfg).Error
}
