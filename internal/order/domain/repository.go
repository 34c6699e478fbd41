package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertSnapshot(ctx context.Context, db *gorm.DB, snap *Snapshot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByOrderNo(ctx context.Context, db *gorm.DB, orderNo string) (*Order, error)
	// FindByOrderNoForUpdate locks the order row for a status transition.
	FindByOrderNoForUpdate(ctx context.Context, db *gorm.DB, orderNo string) (*Order, error)
	SnapshotByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Snapshot, error)
	// UpdateStatus moves the order from exactly the given status; it reports
	// zero rows when another writer got there first.
	UpdateStatus(ctx context.Context, db *gorm.DB, orderID snowflake.ID, from, to Status, fields map[string]any) (int64, error)
	// CountActiveByEscortSlot counts orders occupying an escort's hospital
	// date/time slot. Same-slot equality, not interval overlap.
	CountActiveByEscortSlot(ctx context.Context, db *gorm.DB, escortID, hospitalID snowflake.ID, visitDate time.Time, timeSlot string) (int64, error)
	CountCompletedByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	// LifetimeSpend sums paid amounts over the user's completed orders.
	LifetimeSpend(ctx context.Context, db *gorm.DB, userID snowflake.ID) (decimal.Decimal, error)
	// ListByUser pages newest-first. beforeID breaks ties between rows that
	// share createdBefore's timestamp; zero means no tie-break.
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, createdBefore *time.Time, beforeID snowflake.ID, limit int) ([]Order, error)
}
