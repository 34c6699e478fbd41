// Package domain contains promotional campaigns and their participation ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DiscountType string

var (
	DiscountAmount  DiscountType = "amount"
	DiscountPercent DiscountType = "percent"
)

type Scope string

var (
	ScopeAll      Scope = "all"
	ScopeCategory Scope = "category"
	ScopeService  Scope = "service"
)

type Campaign struct {
	ID           snowflake.ID               `json:"id" gorm:"primaryKey"`
	Name         string                     `json:"name" gorm:"type:text;not null"`
	StartAt      time.Time                  `json:"start_at" gorm:"not null;index"`
	EndAt        time.Time                  `json:"end_at" gorm:"not null;index"`
	Scope        Scope                      `json:"scope" gorm:"type:text;not null;default:'all'"`
	ScopeIDs     datatypes.JSONSlice[int64] `json:"scope_ids,omitempty" gorm:"type:json"`
	DiscountType DiscountType               `json:"discount_type" gorm:"type:text;not null"`
	Value        decimal.Decimal            `json:"value" gorm:"type:decimal(12,2);not null"`
	// PercentCap bounds the absolute discount of a percent campaign.
	PercentCap *decimal.Decimal `json:"percent_cap,omitempty" gorm:"type:decimal(12,2)"`
	Sort       int              `json:"sort" gorm:"not null;default:0"`
	// StockLimit, when set, makes the campaign a limited allocation pool.
	StockLimit *int64    `json:"stock_limit,omitempty"`
	StockUsed  int64     `json:"stock_used" gorm:"not null;default:0"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Campaign) TableName() string { return "campaigns" }

// Covers reports whether the campaign's scope includes the given service.
func (c *Campaign) Covers(serviceID, categoryID snowflake.ID) bool {
	switch c.Scope {
	case ScopeAll:
		return true
	case ScopeCategory:
		return containsID(c.ScopeIDs, categoryID)
	case ScopeService:
		return containsID(c.ScopeIDs, serviceID)
	default:
		return false
	}
}

// WindowContains reports whether now falls inside the campaign window.
func (c *Campaign) WindowContains(now time.Time) bool {
	return !now.Before(c.StartAt) && now.Before(c.EndAt)
}

// Limited reports whether the campaign draws from a bounded stock pool.
func (c *Campaign) Limited() bool { return c.StockLimit != nil }

func containsID(ids []int64, id snowflake.ID) bool {
	for _, v := range ids {
		if v == id.Int64() {
			return true
		}
	}
	return false
}

// Participation is an append-only record linking a campaign to the order it
// discounted, used for spend caps and reporting.
type Participation struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	CampaignID snowflake.ID    `json:"campaign_id" gorm:"not null;index"`
	UserID     snowflake.ID    `json:"user_id" gorm:"not null;index"`
	OrderID    snowflake.ID    `json:"order_id" gorm:"not null;uniqueIndex"`
	Discount   decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Participation) TableName() string { return "campaign_participations" }
