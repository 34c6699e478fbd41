package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() reviewdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *reviewdomain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) CountsByEscort(ctx context.Context, db *gorm.DB, escortID snowflake.ID) (int64, int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&reviewdomain.Review{}).
		Where("escort_id = ? AND visible = ?", escortID, true).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var positive int64
	err = db.WithContext(ctx).
		Model(&reviewdomain.Review{}).
		Where("escort_id = ? AND visible = ? AND stars >= ?", escortID, true, reviewdomain.PositiveStars).
		Count(&positive).Error
	if err != nil {
		return 0, 0, err
	}
	return total, positive, nil
}
