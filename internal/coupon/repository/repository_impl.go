package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() coupondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *coupondomain.UserCoupon) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) FindOwned(ctx context.Context, db *gorm.DB, userID, couponID snowflake.ID) (*coupondomain.UserCoupon, error) {
	var c coupondomain.UserCoupon
	err := db.WithContext(ctx).First(&c, "id = ? AND user_id = ?", couponID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) MarkUsed(ctx context.Context, db *gorm.DB, couponID, orderID snowflake.ID, usedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&coupondomain.UserCoupon{}).
		Where("id = ? AND status = ?", couponID, coupondomain.StatusUnused).
		Updates(map[string]any{
			"status":   coupondomain.StatusUsed,
			"order_id": orderID,
			"used_at":  usedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return coupondomain.ErrCouponAlreadyUsed
	}
	return nil
}

func (r *repo) ListTemplatesByTrigger(ctx context.Context, db *gorm.DB, trigger coupondomain.GrantTrigger) ([]coupondomain.Template, error) {
	var items []coupondomain.Template
	err := db.WithContext(ctx).
		Where("grant_trigger = ? AND active = ?", trigger, true).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
