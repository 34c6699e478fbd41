// Package domain contains memberships and the tier ladder used for
// lifetime-spend upgrades.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tier is one rung of the membership ladder. Level orders tiers; the upgrade
// evaluation picks the highest level whose spend threshold is reached.
type Tier struct {
	ID                    snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name                  string          `json:"name" gorm:"type:text;not null"`
	Level                 int             `json:"level" gorm:"not null;uniqueIndex"`
	DiscountPercent       decimal.Decimal `json:"discount_percent" gorm:"type:decimal(5,2);not null"`
	OvertimeWaiverPercent decimal.Decimal `json:"overtime_waiver_percent" gorm:"type:decimal(5,2);not null;default:0"`
	SpendThreshold        decimal.Decimal `json:"spend_threshold" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt             time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tier) TableName() string { return "membership_tiers" }

// Membership is a user's active membership. At most one row per user is
// active at any time.
type Membership struct {
	ID                    snowflake.ID    `json:"id" gorm:"primaryKey"`
	UserID                snowflake.ID    `json:"user_id" gorm:"not null;index"`
	TierID                snowflake.ID    `json:"tier_id" gorm:"not null"`
	DiscountPercent       decimal.Decimal `json:"discount_percent" gorm:"type:decimal(5,2);not null"`
	OvertimeWaiverPercent decimal.Decimal `json:"overtime_waiver_percent" gorm:"type:decimal(5,2);not null;default:0"`
	ExpireAt              time.Time       `json:"expire_at" gorm:"not null;index"`
	CreatedAt             time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Membership) TableName() string { return "memberships" }

// Active reports whether the membership window still covers now.
func (m *Membership) Active(now time.Time) bool {
	return now.Before(m.ExpireAt)
}
