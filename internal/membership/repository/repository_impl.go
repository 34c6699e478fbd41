package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() membershipdomain.Repository {
	return &repo{}
}

func (r *repo) ActiveForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) (*membershipdomain.Membership, error) {
	var m membershipdomain.Membership
	err := db.WithContext(ctx).
		Where("user_id = ? AND expire_at > ?", userID, now).
		Order("expire_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) FindTierForSpend(ctx context.Context, db *gorm.DB, lifetimeSpend decimal.Decimal) (*membershipdomain.Tier, error) {
	var t membershipdomain.Tier
	err := db.WithContext(ctx).
		Where("spend_threshold <= ?", lifetimeSpend).
		Order("level DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) UpgradeTier(ctx context.Context, db *gorm.DB, membershipID snowflake.ID, tier *membershipdomain.Tier, now time.Time) error {
	return db.WithContext(ctx).
		Model(&membershipdomain.Membership{}).
		Where("id = ?", membershipID).
		Updates(map[string]any{
			"tier_id":                 tier.ID,
			"discount_percent":        tier.DiscountPercent,
			"overtime_waiver_percent": tier.OvertimeWaiverPercent,
			"updated_at":              now,
		}).Error
}

func (r *repo) FindTierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*membershipdomain.Tier, error) {
	var t membershipdomain.Tier
	err := db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
