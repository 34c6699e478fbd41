package service

import (
	"context"
	"fmt"

	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	"go.uber.org/zap"
)

const firstOrderBonusPoints = 100

type completionTask struct {
	name string
	run  func(ctx context.Context, order *orderdomain.Order, firstOrder bool) error
}

// runCompletionTasks fires the loyalty side effects of a completed order.
// Each task is independent: a panic or error is logged and counted, and the
// remaining tasks still run. Nothing here can undo the completion.
func (s *Service) runCompletionTasks(ctx context.Context, order *orderdomain.Order, firstOrder bool) {
	tasks := []completionTask{
		{name: "membership_upgrade", run: s.upgradeMembership},
		{name: "coupon_grants", run: s.grantCoupons},
		{name: "referral_reward", run: s.deliverReferralReward},
		{name: "points_grant", run: s.grantPoints},
	}

	for _, task := range tasks {
		if err := s.runTask(ctx, task, order, firstOrder); err != nil {
			if s.metrics != nil {
				s.metrics.CompletionTaskErrors.WithLabelValues(task.name).Inc()
			}
			s.log.Error("completion task failed",
				zap.String("task", task.name),
				zap.String("order_no", order.OrderNo),
				zap.Error(err))
		}
	}
}

func (s *Service) runTask(ctx context.Context, task completionTask, order *orderdomain.Order, firstOrder bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.run(ctx, order, firstOrder)
}

// upgradeMembership re-evaluates the user's tier against their lifetime spend
// and moves an active membership up when a higher tier's threshold is reached.
// Tiers never move down here.
func (s *Service) upgradeMembership(ctx context.Context, order *orderdomain.Order, _ bool) error {
	now := s.clock.Now()
	membership, err := s.membershipRepo.ActiveForUser(ctx, s.db, order.UserID, now)
	if err != nil {
		return err
	}
	if membership == nil {
		return nil
	}

	current, err := s.membershipRepo.FindTierByID(ctx, s.db, membership.TierID)
	if err != nil {
		return err
	}

	spend, err := s.repo.LifetimeSpend(ctx, s.db, order.UserID)
	if err != nil {
		return err
	}
	eligible, err := s.membershipRepo.FindTierForSpend(ctx, s.db, spend)
	if err != nil {
		return err
	}
	if eligible == nil || (current != nil && eligible.Level <= current.Level) {
		return nil
	}

	if err := s.membershipRepo.UpgradeTier(ctx, s.db, membership.ID, eligible, now); err != nil {
		return err
	}
	s.log.Info("membership upgraded",
		zap.Int64("user_id", order.UserID.Int64()),
		zap.String("tier", eligible.Name))
	return nil
}

func (s *Service) grantCoupons(ctx context.Context, order *orderdomain.Order, _ bool) error {
	if _, err := s.couponSvc.GrantForTrigger(ctx, order.UserID, coupondomain.TriggerOrderCompleted, order.PaidAmount); err != nil {
		return err
	}

	spend, err := s.repo.LifetimeSpend(ctx, s.db, order.UserID)
	if err != nil {
		return err
	}
	_, err = s.couponSvc.GrantForTrigger(ctx, order.UserID, coupondomain.TriggerSpendMilestone, spend)
	return err
}

func (s *Service) deliverReferralReward(ctx context.Context, order *orderdomain.Order, firstOrder bool) error {
	if !firstOrder {
		return nil
	}
	return s.referralSvc.OnFirstCompletedOrder(ctx, order.UserID, order.ID)
}

// grantPoints credits one point per whole currency unit paid, plus a fixed
// bonus on the user's first completed order.
func (s *Service) grantPoints(ctx context.Context, order *orderdomain.Order, firstOrder bool) error {
	points := order.PaidAmount.Floor().IntPart()
	if firstOrder {
		points += firstOrderBonusPoints
	}
	if points <= 0 {
		return nil
	}
	return s.pointsRepo.Grant(ctx, s.db, s.genID, order.UserID, points, "order_completed", order.ID)
}
