package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() pointsdomain.Repository {
	return &repo{}
}

func (r *repo) CurrentPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var balance pointsdomain.Balance
	err := db.WithContext(ctx).First(&balance, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.CurrentPoints, nil
}

func (r *repo) Debit(ctx context.Context, db *gorm.DB, genID *snowflake.Node, userID snowflake.ID, points int64, source string, sourceID snowflake.ID) error {
	if points <= 0 {
		return pointsdomain.ErrInvalidPoints
	}

	// Locked re-read: the quote-time balance may be stale by now.
	var balance pointsdomain.Balance
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&balance, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pointsdomain.ErrInsufficientPoints
	}
	if err != nil {
		return err
	}
	if balance.CurrentPoints < points {
		return pointsdomain.ErrInsufficientPoints
	}

	remaining := balance.CurrentPoints - points
	err = db.WithContext(ctx).
		Model(&pointsdomain.Balance{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"current_points": remaining,
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Create(&pointsdomain.Record{
		ID:       genID.Generate(),
		UserID:   userID,
		Type:     pointsdomain.RecordRedeem,
		Points:   -points,
		Balance:  remaining,
		Source:   source,
		SourceID: sourceID,
	}).Error
}

func (r *repo) Grant(ctx context.Context, db *gorm.DB, genID *snowflake.Node, userID snowflake.ID, points int64, source string, sourceID snowflake.ID) error {
	if points <= 0 {
		return pointsdomain.ErrInvalidPoints
	}

	var balance pointsdomain.Balance
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&balance, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		balance = pointsdomain.Balance{UserID: userID, CurrentPoints: points, UpdatedAt: time.Now().UTC()}
		if err := db.WithContext(ctx).Create(&balance).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		balance.CurrentPoints += points
		err = db.WithContext(ctx).
			Model(&pointsdomain.Balance{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"current_points": balance.CurrentPoints,
				"updated_at":     time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
	}

	return db.WithContext(ctx).Create(&pointsdomain.Record{
		ID:       genID.Generate(),
		UserID:   userID,
		Type:     pointsdomain.RecordEarn,
		Points:   points,
		Balance:  balance.CurrentPoints,
		Source:   source,
		SourceID: sourceID,
	}).Error
}
