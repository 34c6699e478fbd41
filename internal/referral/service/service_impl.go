package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/config"
	referraldomain "github.com/carewise/escortcare/internal/referral/domain"
	"github.com/carewise/escortcare/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultRewardAmount = decimal.NewFromInt(10)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Cfg   config.Config
	Repo  referraldomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   referraldomain.Repository
	reward decimal.Decimal
}

func New(p Params) referraldomain.Service {
	reward := defaultRewardAmount
	if raw := strings.TrimSpace(p.Cfg.ReferralRewardAmount); raw != "" {
		if parsed, err := decimal.NewFromString(raw); err == nil && parsed.IsPositive() {
			reward = parsed
		}
	}
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("referral.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		reward: reward,
	}
}

// OnFirstCompletedOrder mints the inviter's reward for an invitee's first
// completed order. The unique index on invitee_id makes re-delivery a no-op.
func (s *Service) OnFirstCompletedOrder(ctx context.Context, inviteeID, orderID snowflake.ID) error {
	binding, err := s.repo.FindBindingByInvitee(ctx, s.db, inviteeID)
	if err != nil {
		return err
	}
	if binding == nil {
		return nil
	}

	err = s.repo.InsertReward(ctx, s.db, &referraldomain.Reward{
		ID:        s.genID.Generate(),
		InviterID: binding.InviterID,
		InviteeID: inviteeID,
		OrderID:   orderID,
		Amount:    s.reward,
		Status:    referraldomain.RewardPending,
	})
	if db.IsDuplicateKeyErr(err) {
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info("referral reward created",
		zap.Int64("inviter_id", binding.InviterID.Int64()),
		zap.Int64("invitee_id", inviteeID.Int64()),
		zap.Int64("order_id", orderID.Int64()))
	return nil
}
