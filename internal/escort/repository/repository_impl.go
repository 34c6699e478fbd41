package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() escortdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*escortdomain.Escort, error) {
	var e escortdomain.Escort
	err := db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) IncrementOrderCounters(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&escortdomain.Escort{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"order_count":       gorm.Expr("order_count + 1"),
			"daily_order_count": gorm.Expr("daily_order_count + 1"),
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *repo) AppendStatusLog(ctx context.Context, db *gorm.DB, entry *escortdomain.StatusLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) UpdateRating(ctx context.Context, db *gorm.DB, id snowflake.ID, rating float64, count int64) error {
	return db.WithContext(ctx).
		Model(&escortdomain.Escort{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":       rating,
			"rating_count": count,
			"updated_at":   time.Now().UTC(),
		}).Error
}
