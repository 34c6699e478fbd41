package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/clock"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ConfigParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  pricingdomain.ConfigRepository
}

type ConfigService struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  pricingdomain.ConfigRepository
}

func NewConfigService(p ConfigParams) pricingdomain.ConfigService {
	return &ConfigService{
		db:    p.DB,
		log:   p.Log.Named("pricing.config"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *ConfigService) Current(ctx context.Context) (*pricingdomain.Config, error) {
	cfg, err := s.repo.Latest(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return pricingdomain.DefaultConfig(), nil
	}
	return cfg, nil
}

// Update appends a new configuration row. Readers always take the most
// recent row, so an append is an atomic switch with full history retained.
func (s *ConfigService) Update(ctx context.Context, req pricingdomain.UpdateConfigRequest) (*pricingdomain.Config, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	next := *current
	next.ID = s.genID.Generate()
	next.CreatedAt = s.clock.Now()

	if strings.TrimSpace(req.StackMode) != "" {
		mode, err := pricingdomain.ParseStackMode(req.StackMode)
		if err != nil {
			return nil, err
		}
		next.StackMode = string(mode)
	}
	if req.CampaignEnabled != nil {
		next.CampaignEnabled = *req.CampaignEnabled
	}
	if req.MemberEnabled != nil {
		next.MemberEnabled = *req.MemberEnabled
	}
	if req.CouponEnabled != nil {
		next.CouponEnabled = *req.CouponEnabled
	}
	if req.PointsEnabled != nil {
		next.PointsEnabled = *req.PointsEnabled
	}
	if err := applyDecimalField(&next.PointsExchangeRate, req.PointsExchangeRate, true); err != nil {
		return nil, err
	}
	if err := applyDecimalField(&next.PointsMaxPercent, req.PointsMaxPercent, false); err != nil {
		return nil, err
	}
	if err := applyDecimalField(&next.MinPayable, req.MinPayable, false); err != nil {
		return nil, err
	}
	if next.PointsMaxPercent.IsNegative() || next.PointsMaxPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pricingdomain.ErrInvalidConfig
	}

	if err := s.repo.Insert(ctx, s.db, &next); err != nil {
		return nil, err
	}

	s.log.Info("pricing config updated",
		zap.String("stack_mode", next.StackMode),
		zap.String("min_payable", next.MinPayable.String()))
	return &next, nil
}

func applyDecimalField(dst *decimal.Decimal, raw string, requirePositive bool) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return pricingdomain.ErrInvalidConfig
	}
	if parsed.IsNegative() || (requirePositive && !parsed.IsPositive()) {
		return pricingdomain.ErrInvalidConfig
	}
	*dst = parsed
	return nil
}
