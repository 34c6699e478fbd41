package service

import (
	"context"
	"time"

	campaigndomain "github.com/carewise/escortcare/internal/campaign/domain"
	catalogdomain "github.com/carewise/escortcare/internal/catalog/domain"
	"github.com/carewise/escortcare/internal/clock"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	ConfigRepo     pricingdomain.ConfigRepository
	CatalogRepo    catalogdomain.Repository
	CampaignRepo   campaigndomain.Repository
	CouponRepo     coupondomain.Repository
	PointsRepo     pointsdomain.Repository
	MembershipRepo membershipdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	configRepo     pricingdomain.ConfigRepository
	catalogRepo    catalogdomain.Repository
	campaignRepo   campaigndomain.Repository
	couponRepo     coupondomain.Repository
	pointsRepo     pointsdomain.Repository
	membershipRepo membershipdomain.Repository
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("pricing.service"),
		clock:          p.Clock,
		configRepo:     p.ConfigRepo,
		catalogRepo:    p.CatalogRepo,
		campaignRepo:   p.CampaignRepo,
		couponRepo:     p.CouponRepo,
		pointsRepo:     p.PointsRepo,
		membershipRepo: p.MembershipRepo,
	}
}

func (s *Service) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.Breakdown, error) {
	return s.QuoteTx(ctx, s.db, req)
}

// QuoteTx runs the discount pipeline: base, campaign, membership, coupon,
// points, floor. Each stage reads the previous stage's output price.
func (s *Service) QuoteTx(ctx context.Context, tx *gorm.DB, req pricingdomain.QuoteRequest) (*pricingdomain.Breakdown, error) {
	if req.Quantity <= 0 {
		return nil, pricingdomain.ErrInvalidQuantity
	}

	cfg, err := s.loadConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	mode, err := pricingdomain.ParseStackMode(cfg.StackMode)
	if err != nil {
		return nil, err
	}

	svc, err := s.catalogRepo.FindByID(ctx, tx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, pricingdomain.ErrServiceNotFound
	}
	if !svc.Active {
		return nil, pricingdomain.ErrServiceInactive
	}

	now := s.clock.Now()

	var membership *membershipdomain.Membership
	if req.UserID != 0 {
		membership, err = s.membershipRepo.ActiveForUser(ctx, tx, req.UserID, now)
		if err != nil {
			return nil, err
		}
	}
	if svc.MemberPolicy == catalogdomain.MemberPolicyExclusive && membership == nil {
		return nil, pricingdomain.ErrMembershipRequired
	}

	base := svc.Price.Mul(decimal.NewFromInt(req.Quantity)).Round(2)
	b := &pricingdomain.Breakdown{
		ServiceID:     req.ServiceID,
		Quantity:      req.Quantity,
		UnitPrice:     svc.Price,
		OriginalPrice: base,
		StackMode:     mode,
		ComputedAt:    now,
	}

	running := base
	running, err = s.applyCampaign(ctx, tx, cfg, mode, req, svc, now, running, b)
	if err != nil {
		return nil, err
	}
	running = applyMembership(cfg, mode, svc, membership, base, running, b)
	running, err = s.applyCoupon(ctx, tx, cfg, mode, req, svc, membership, now, running, b)
	if err != nil {
		return nil, err
	}
	running, err = s.applyPoints(ctx, tx, cfg, req, running, b)
	if err != nil {
		return nil, err
	}

	// Floor stage: the payable amount never drops below the configured minimum.
	final := running
	if final.LessThan(cfg.MinPayable) {
		final = cfg.MinPayable
	}
	b.FinalPrice = final
	b.TotalDiscount = base.Sub(final)

	b.OvertimeWaiverPercent = decimal.Zero
	if membership != nil {
		b.OvertimeWaiverPercent = membership.OvertimeWaiverPercent
	}
	if svc.OvertimeWaiverOverride != nil {
		b.OvertimeWaiverPercent = *svc.OvertimeWaiverOverride
	}

	return b, nil
}

func (s *Service) loadConfig(ctx context.Context, tx *gorm.DB) (*pricingdomain.Config, error) {
	cfg, err := s.configRepo.Latest(ctx, tx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return pricingdomain.DefaultConfig(), nil
	}
	return cfg, nil
}

// applyCampaign resolves the campaign (explicit id or best auto-match) and
// folds its price in. In multiply mode the campaign price unconditionally
// becomes the running price; in best-of it is adopted only when strictly
// cheaper than the running price.
func (s *Service) applyCampaign(ctx context.Context, tx *gorm.DB, cfg *pricingdomain.Config, mode pricingdomain.StackMode, req pricingdomain.QuoteRequest, svc *catalogdomain.Service, now time.Time, running decimal.Decimal, b *pricingdomain.Breakdown) (decimal.Decimal, error) {
	b.PriceAfterCampaign = running
	if !cfg.CampaignEnabled {
		return running, nil
	}

	campaign, err := s.resolveCampaign(ctx, tx, req, svc, now)
	if err != nil {
		return running, err
	}
	if campaign == nil {
		return running, nil
	}

	candidate := campaignPrice(campaign, running)
	adopt := mode == pricingdomain.StackModeMultiply || candidate.LessThan(running)
	if !adopt {
		return running, nil
	}

	b.CampaignID = &campaign.ID
	b.CampaignDiscount = running.Sub(candidate)
	b.PriceAfterCampaign = candidate
	return candidate, nil
}

func (s *Service) resolveCampaign(ctx context.Context, tx *gorm.DB, req pricingdomain.QuoteRequest, svc *catalogdomain.Service, now time.Time) (*campaigndomain.Campaign, error) {
	if req.CampaignID != nil {
		campaign, err := s.campaignRepo.FindByID(ctx, tx, *req.CampaignID)
		if err != nil {
			return nil, err
		}
		// An explicitly requested but inapplicable campaign is skipped, not
		// an error, mirroring coupon handling.
		if campaign == nil || !campaign.Active ||
			!campaign.WindowContains(now) ||
			!campaign.Covers(svc.ID, svc.CategoryID) {
			return nil, nil
		}
		return campaign, nil
	}
	return s.campaignRepo.FindBestMatch(ctx, tx, now, svc.ID, svc.CategoryID)
}

func campaignPrice(c *campaigndomain.Campaign, running decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case campaigndomain.DiscountAmount:
		candidate := running.Sub(c.Value)
		if candidate.IsNegative() {
			return decimal.Zero
		}
		return candidate.Round(2)
	case campaigndomain.DiscountPercent:
		candidate := running.Mul(hundred.Sub(c.Value)).Div(hundred).Round(2)
		if c.PercentCap != nil {
			if discount := running.Sub(candidate); discount.GreaterThan(*c.PercentCap) {
				candidate = running.Sub(*c.PercentCap)
			}
		}
		return candidate
	default:
		return running
	}
}

// applyMembership implements the two stacking paths. Multiply compounds the
// member rate onto the already-discounted running price. Best-of recomputes
// the member price from the original base and replaces the campaign lineage
// when strictly cheaper, zeroing the campaign fields in the breakdown.
func applyMembership(cfg *pricingdomain.Config, mode pricingdomain.StackMode, svc *catalogdomain.Service, membership *membershipdomain.Membership, base, running decimal.Decimal, b *pricingdomain.Breakdown) decimal.Decimal {
	b.PriceAfterMember = running
	if !cfg.MemberEnabled || membership == nil || svc.MemberPolicy == catalogdomain.MemberPolicyFixed {
		return running
	}

	rate := membership.DiscountPercent
	if svc.MemberDiscountOverride != nil {
		rate = *svc.MemberDiscountOverride
	}
	if !rate.IsPositive() {
		return running
	}

	switch mode {
	case pricingdomain.StackModeMultiply:
		candidate := running.Mul(hundred.Sub(rate)).Div(hundred).Round(2)
		b.MemberDiscount = running.Sub(candidate)
		b.PriceAfterMember = candidate
		return candidate

	case pricingdomain.StackModeBestOf:
		candidate := base.Mul(hundred.Sub(rate)).Div(hundred).Round(2)
		if !candidate.LessThan(running) {
			return running
		}
		b.CampaignID = nil
		b.CampaignDiscount = decimal.Zero
		b.PriceAfterCampaign = base
		b.MemberDiscount = base.Sub(candidate)
		b.PriceAfterMember = candidate
		return candidate

	default:
		return running
	}
}

// applyCoupon checks applicability and folds the coupon in. Any failed check
// drops the coupon from the quote silently.
func (s *Service) applyCoupon(ctx context.Context, tx *gorm.DB, cfg *pricingdomain.Config, mode pricingdomain.StackMode, req pricingdomain.QuoteRequest, svc *catalogdomain.Service, membership *membershipdomain.Membership, now time.Time, running decimal.Decimal, b *pricingdomain.Breakdown) (decimal.Decimal, error) {
	b.PriceAfterCoupon = running
	if !cfg.CouponEnabled || req.CouponID == nil || req.UserID == 0 {
		return running, nil
	}

	coupon, err := s.couponRepo.FindOwned(ctx, tx, req.UserID, *req.CouponID)
	if err != nil {
		return running, err
	}
	if coupon == nil ||
		coupon.Status != coupondomain.StatusUnused ||
		coupon.Expired(now) ||
		!coupon.Covers(svc.ID, svc.CategoryID) ||
		running.LessThan(coupon.MinAmount) {
		return running, nil
	}
	if coupon.MemberOnly && membership == nil {
		return running, nil
	}
	if membership != nil && !coupon.StackWithMember {
		return running, nil
	}
	if mode == pricingdomain.StackModeMultiply && !coupon.StackInMultiply {
		return running, nil
	}

	discount := couponDiscount(coupon, running)
	if !discount.IsPositive() {
		return running, nil
	}

	candidate := running.Sub(discount)
	b.CouponID = &coupon.ID
	b.CouponDiscount = discount
	b.PriceAfterCoupon = candidate
	return candidate, nil
}

func couponDiscount(c *coupondomain.UserCoupon, running decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case coupondomain.TypeAmount:
		if c.Value.GreaterThan(running) {
			return running
		}
		return c.Value
	case coupondomain.TypePercent:
		discount := running.Mul(c.Value).Div(hundred).Round(2)
		if c.PercentCap != nil && discount.GreaterThan(*c.PercentCap) {
			discount = *c.PercentCap
		}
		if discount.GreaterThan(running) {
			return running
		}
		return discount
	case coupondomain.TypeFree:
		return running
	default:
		return decimal.Zero
	}
}

// applyPoints redeems points against the running price. The redeemable
// discount is the minimum of four independently floored bounds; the points
// consumed round up so the rounding never favors the caller.
func (s *Service) applyPoints(ctx context.Context, tx *gorm.DB, cfg *pricingdomain.Config, req pricingdomain.QuoteRequest, running decimal.Decimal, b *pricingdomain.Breakdown) (decimal.Decimal, error) {
	b.PriceAfterPoints = running
	if !cfg.PointsEnabled || req.PointsToUse <= 0 || req.UserID == 0 {
		return running, nil
	}
	if !cfg.PointsExchangeRate.IsPositive() {
		return running, pricingdomain.ErrInvalidConfig
	}

	balance, err := s.pointsRepo.CurrentPoints(ctx, tx, req.UserID)
	if err != nil {
		return running, err
	}
	if balance <= 0 {
		return running, nil
	}

	byPercent := running.Mul(cfg.PointsMaxPercent).Div(hundred).RoundFloor(2)
	byRequested := decimal.NewFromInt(req.PointsToUse).Div(cfg.PointsExchangeRate).RoundFloor(2)
	byFloor := running.Sub(cfg.MinPayable).RoundFloor(2)
	byBalance := decimal.NewFromInt(balance).Div(cfg.PointsExchangeRate).RoundFloor(2)

	discount := decimal.Min(byPercent, byRequested, byFloor, byBalance)
	if !discount.IsPositive() {
		return running, nil
	}

	pointsUsed := discount.Mul(cfg.PointsExchangeRate).Ceil().IntPart()

	b.PointsUsed = pointsUsed
	b.PointsDiscount = discount
	b.PriceAfterPoints = running.Sub(discount)
	return b.PriceAfterPoints, nil
}
