package domain

import (
	"context"

	"gorm.io/gorm"
)

// Service computes read-only quotes. Quote never mutates state; consuming the
// quote is the order orchestrator's job.
type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Breakdown, error)
	// QuoteTx computes a quote using the caller's transaction handle so the
	// orchestrator can price inside its atomic boundary.
	QuoteTx(ctx context.Context, tx *gorm.DB, req QuoteRequest) (*Breakdown, error)
}

// ConfigService reads and replaces the pricing configuration.
type ConfigService interface {
	Current(ctx context.Context) (*Config, error)
	Update(ctx context.Context, req UpdateConfigRequest) (*Config, error)
}

type UpdateConfigRequest struct {
	StackMode          string `json:"stack_mode"`
	CampaignEnabled    *bool  `json:"campaign_enabled"`
	MemberEnabled      *bool  `json:"member_enabled"`
	CouponEnabled      *bool  `json:"coupon_enabled"`
	PointsEnabled      *bool  `json:"points_enabled"`
	PointsExchangeRate string `json:"points_exchange_rate"`
	PointsMaxPercent   string `json:"points_max_percent"`
	MinPayable         string `json:"min_payable"`
}

// ConfigRepository persists configuration rows, most recent wins.
type ConfigRepository interface {
	Latest(ctx context.Context, db *gorm.DB) (*Config, error)
	Insert(ctx context.Context, db *gorm.DB, cfg *Config) error
}
