package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, c *UserCoupon) error
	// FindOwned returns the coupon only when it belongs to the user.
	FindOwned(ctx context.Context, db *gorm.DB, userID, couponID snowflake.ID) (*UserCoupon, error)
	// MarkUsed performs the one-way unused -> used transition, stamping the
	// consuming order. It fails with ErrCouponAlreadyUsed when the row was
	// already consumed, which is what makes concurrent double-spends lose.
	MarkUsed(ctx context.Context, db *gorm.DB, couponID, orderID snowflake.ID, usedAt time.Time) error
	ListTemplatesByTrigger(ctx context.Context, db *gorm.DB, trigger GrantTrigger) ([]Template, error)
}

// Service grants coupons from templates on completion triggers.
type Service interface {
	GrantForTrigger(ctx context.Context, userID snowflake.ID, trigger GrantTrigger, lifetimeSpend decimal.Decimal) (int, error)
}

var (
	ErrCouponNotFound    = errors.New("coupon_not_found")
	ErrCouponAlreadyUsed = errors.New("coupon_already_used")
)
