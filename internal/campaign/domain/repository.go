package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	// FindBestMatch returns the highest-sort active campaign whose window
	// covers now and whose scope covers the service, or nil.
	FindBestMatch(ctx context.Context, db *gorm.DB, now time.Time, serviceID, categoryID snowflake.ID) (*Campaign, error)
	AppendParticipation(ctx context.Context, db *gorm.DB, p *Participation) error
	// TakeStock claims one unit of a limited campaign's pool; it fails when
	// the pool is exhausted.
	TakeStock(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// ReleaseStock returns one unit to the pool after a cancellation.
	ReleaseStock(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

var (
	ErrCampaignNotFound = errors.New("campaign_not_found")
	ErrStockExhausted   = errors.New("campaign_stock_exhausted")
)
