package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/clock"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  coupondomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  coupondomain.Repository
}

func New(p Params) coupondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// GrantForTrigger mints a coupon for every active template matching the
// trigger. Spend-milestone templates additionally require the user's lifetime
// spend to have reached the template threshold.
func (s *Service) GrantForTrigger(ctx context.Context, userID snowflake.ID, trigger coupondomain.GrantTrigger, lifetimeSpend decimal.Decimal) (int, error) {
	templates, err := s.repo.ListTemplatesByTrigger(ctx, s.db, trigger)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	granted := 0
	for i := range templates {
		tpl := &templates[i]
		if trigger == coupondomain.TriggerSpendMilestone && lifetimeSpend.LessThan(tpl.SpendThreshold) {
			continue
		}

		expireAt := now.Add(time.Duration(tpl.ValidDays) * 24 * time.Hour)
		instance := &coupondomain.UserCoupon{
			ID:         s.genID.Generate(),
			UserID:     userID,
			TemplateID: &tpl.ID,
			Name:       tpl.Name,
			Type:       tpl.Type,
			Value:      tpl.Value,
			PercentCap: tpl.PercentCap,
			MinAmount:  tpl.MinAmount,
			Scope:      tpl.Scope,
			ScopeIDs:   tpl.ScopeIDs,
			Status:     coupondomain.StatusUnused,
			ExpireAt:   &expireAt,
			CreatedAt:  now,
		}
		if err := s.repo.Insert(ctx, s.db, instance); err != nil {
			s.log.Warn("coupon grant failed",
				zap.Int64("user_id", userID.Int64()),
				zap.Int64("template_id", tpl.ID.Int64()),
				zap.Error(err))
			continue
		}
		granted++
	}

	return granted, nil
}
