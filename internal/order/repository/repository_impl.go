package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) InsertSnapshot(ctx context.Context, db *gorm.DB, snap *orderdomain.Snapshot) error {
	return db.WithContext(ctx).Create(snap).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByOrderNo(ctx context.Context, db *gorm.DB, orderNo string) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).First(&order, "order_no = ?", orderNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByOrderNoForUpdate(ctx context.Context, db *gorm.DB, orderNo string) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "order_no = ?", orderNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) SnapshotByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*orderdomain.Snapshot, error) {
	var snap orderdomain.Snapshot
	err := db.WithContext(ctx).First(&snap, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, orderID snowflake.ID, from, to orderdomain.Status, fields map[string]any) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range fields {
		updates[k] = v
	}
	res := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repo) CountActiveByEscortSlot(ctx context.Context, db *gorm.DB, escortID, hospitalID snowflake.ID, visitDate time.Time, timeSlot string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("escort_id = ? AND hospital_id = ? AND visit_date = ? AND time_slot = ? AND status IN ?",
			escortID,
			hospitalID,
			visitDate.Format("2006-01-02"),
			timeSlot,
			[]orderdomain.Status{orderdomain.StatusAssigned, orderdomain.StatusArrived, orderdomain.StatusInProgress},
		).
		Count(&count).Error
	return count, err
}

func (r *repo) CountCompletedByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("user_id = ? AND status = ?", userID, orderdomain.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *repo) LifetimeSpend(ctx context.Context, db *gorm.DB, userID snowflake.ID) (decimal.Decimal, error) {
	var raw *string
	err := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Select("CAST(SUM(paid_amount) AS TEXT)").
		Where("user_id = ? AND status = ?", userID, orderdomain.StatusCompleted).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, createdBefore *time.Time, beforeID snowflake.ID, limit int) ([]orderdomain.Order, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if createdBefore != nil {
		if beforeID > 0 {
			q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", *createdBefore, *createdBefore, beforeID)
		} else {
			q = q.Where("created_at < ?", *createdBefore)
		}
	}

	var items []orderdomain.Order
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
