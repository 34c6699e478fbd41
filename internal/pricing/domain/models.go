// Package domain contains the pricing configuration, the quote contract, and
// the immutable price breakdown.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// StackMode is the policy for combining discounts. It is parsed once per
// quote; the pipeline branches on the closed variant, never on raw strings.
type StackMode string

var (
	// StackModeMultiply compounds every discount on the previous stage's
	// output price.
	StackModeMultiply StackMode = "multiply"
	// StackModeBestOf keeps a single discount lineage: campaign and
	// membership compete, the cheaper path wins.
	StackModeBestOf StackMode = "best_of"
)

func ParseStackMode(value string) (StackMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(StackModeMultiply):
		return StackModeMultiply, nil
	case string(StackModeBestOf), "best-of":
		return StackModeBestOf, nil
	default:
		return "", ErrInvalidStackMode
	}
}

// Config is the most-recent-wins pricing configuration row. It is loaded
// fresh for every quote, never cached across requests.
type Config struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	StackMode string       `json:"stack_mode" gorm:"type:text;not null;default:'multiply'"`

	CampaignEnabled bool `json:"campaign_enabled" gorm:"not null;default:true"`
	MemberEnabled   bool `json:"member_enabled" gorm:"not null;default:true"`
	CouponEnabled   bool `json:"coupon_enabled" gorm:"not null;default:true"`
	PointsEnabled   bool `json:"points_enabled" gorm:"not null;default:true"`

	// PointsExchangeRate is points per one unit of currency.
	PointsExchangeRate decimal.Decimal `json:"points_exchange_rate" gorm:"type:decimal(12,4);not null;default:100"`
	// PointsMaxPercent bounds the share of the running price redeemable with
	// points, 0-100.
	PointsMaxPercent decimal.Decimal `json:"points_max_percent" gorm:"type:decimal(5,2);not null;default:50"`
	MinPayable       decimal.Decimal `json:"min_payable" gorm:"type:decimal(12,2);not null;default:0.01"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Config) TableName() string { return "pricing_configs" }

// DefaultConfig is used before any configuration row has been written.
func DefaultConfig() *Config {
	return &Config{
		StackMode:          string(StackModeMultiply),
		CampaignEnabled:    true,
		MemberEnabled:      true,
		CouponEnabled:      true,
		PointsEnabled:      true,
		PointsExchangeRate: decimal.NewFromInt(100),
		PointsMaxPercent:   decimal.NewFromInt(50),
		MinPayable:         decimal.RequireFromString("0.01"),
	}
}

// QuoteRequest carries the inputs of one price computation.
type QuoteRequest struct {
	ServiceID   snowflake.ID
	Quantity    int64
	UserID      snowflake.ID
	CouponID    *snowflake.ID
	CampaignID  *snowflake.ID
	PointsToUse int64
}

// Breakdown is the full result of one quote. The orchestrator persists it
// verbatim as the order's price snapshot.
type Breakdown struct {
	ServiceID snowflake.ID    `json:"service_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// OriginalPrice is unit price times quantity, before any discount.
	OriginalPrice decimal.Decimal `json:"original_price"`

	StackMode StackMode `json:"stack_mode"`

	CampaignID         *snowflake.ID   `json:"campaign_id,omitempty"`
	CampaignDiscount   decimal.Decimal `json:"campaign_discount"`
	PriceAfterCampaign decimal.Decimal `json:"price_after_campaign"`

	MemberDiscount   decimal.Decimal `json:"member_discount"`
	PriceAfterMember decimal.Decimal `json:"price_after_member"`

	CouponID         *snowflake.ID   `json:"coupon_id,omitempty"`
	CouponDiscount   decimal.Decimal `json:"coupon_discount"`
	PriceAfterCoupon decimal.Decimal `json:"price_after_coupon"`

	PointsUsed       int64           `json:"points_used"`
	PointsDiscount   decimal.Decimal `json:"points_discount"`
	PriceAfterPoints decimal.Decimal `json:"price_after_points"`

	FinalPrice    decimal.Decimal `json:"final_price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`

	// OvertimeWaiverPercent is the overtime-fee waiver locked in at quote
	// time: service override, else membership tier default, else zero.
	OvertimeWaiverPercent decimal.Decimal `json:"overtime_waiver_percent"`

	ComputedAt time.Time `json:"computed_at"`
}

var (
	ErrInvalidStackMode  = errors.New("invalid_stack_mode")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrServiceNotFound   = errors.New("service_not_found")
	ErrServiceInactive   = errors.New("service_inactive")
	ErrMembershipRequired = errors.New("membership_required")
	ErrInvalidConfig     = errors.New("invalid_pricing_config")
)
