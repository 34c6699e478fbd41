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
	// ActiveForUser returns the user's unexpired membership, or nil.
	ActiveForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) (*Membership, error)
	FindTierForSpend(ctx context.Context, db *gorm.DB, lifetimeSpend decimal.Decimal) (*Tier, error)
	// UpgradeTier moves an active membership onto a higher tier, keeping the
	// expiry window.
	UpgradeTier(ctx context.Context, db *gorm.DB, membershipID snowflake.ID, tier *Tier, now time.Time) error
	FindTierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tier, error)
}

var ErrMembershipRequired = errors.New("membership_required")
