package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/carewise/escortcare/internal/campaign/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() campaigndomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*campaigndomain.Campaign, error) {
	var c campaigndomain.Campaign
	err := db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindBestMatch(ctx context.Context, db *gorm.DB, now time.Time, serviceID, categoryID snowflake.ID) (*campaigndomain.Campaign, error) {
	var candidates []campaigndomain.Campaign
	err := db.WithContext(ctx).
		Where("active = ? AND start_at <= ? AND end_at > ?", true, now, now).
		Order("sort DESC, created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	// Scope membership lives in a JSON column, so filtering happens here
	// rather than in SQL.
	for i := range candidates {
		if candidates[i].Covers(serviceID, categoryID) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *repo) AppendParticipation(ctx context.Context, db *gorm.DB, p *campaigndomain.Participation) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) TakeStock(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	res := db.WithContext(ctx).
		Model(&campaigndomain.Campaign{}).
		Where("id = ? AND stock_limit IS NOT NULL AND stock_used < stock_limit", id).
		UpdateColumn("stock_used", gorm.Expr("stock_used + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return campaigndomain.ErrStockExhausted
	}
	return nil
}

func (r *repo) ReleaseStock(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&campaigndomain.Campaign{}).
		Where("id = ? AND stock_limit IS NOT NULL AND stock_used > 0", id).
		UpdateColumn("stock_used", gorm.Expr("stock_used - 1")).Error
}
