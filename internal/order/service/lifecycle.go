package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cancel releases an order the user no longer wants. Only orders nobody has
// started working yet can be cancelled; everything later needs an operator.
func (s *Service) Cancel(ctx context.Context, userID snowflake.ID, orderNo string) (*orderdomain.Order, error) {
	var order *orderdomain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindByOrderNoForUpdate(ctx, tx, orderNo)
		if err != nil {
			return err
		}
		if order == nil || order.UserID != userID {
			return orderdomain.ErrOrderNotFound
		}
		if !order.Status.Cancellable() {
			return orderdomain.ErrCancelNotAllowed
		}

		now := s.clock.Now()
		rows, err := s.repo.UpdateStatus(ctx, tx, order.ID, order.Status, orderdomain.StatusCancelled, map[string]any{
			"cancelled_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return orderdomain.ErrInvalidTransition
		}

		order.Status = orderdomain.StatusCancelled
		order.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Returning campaign stock is best effort; a failure here must not undo
	// the cancellation.
	if order.CampaignID != nil {
		s.releaseCampaignStock(ctx, *order.CampaignID, order.OrderNo)
	}

	if s.metrics != nil {
		s.metrics.OrdersCancelledTotal.Inc()
	}
	s.log.Info("order cancelled", zap.String("order_no", order.OrderNo))
	return order, nil
}

func (s *Service) releaseCampaignStock(ctx context.Context, campaignID snowflake.ID, orderNo string) {
	campaign, err := s.campaignRepo.FindByID(ctx, s.db, campaignID)
	if err != nil || campaign == nil || !campaign.Limited() {
		if err != nil {
			s.log.Warn("campaign lookup failed after cancel",
				zap.String("order_no", orderNo), zap.Error(err))
		}
		return
	}
	if err := s.campaignRepo.ReleaseStock(ctx, s.db, campaignID); err != nil {
		s.log.Warn("campaign stock release failed after cancel",
			zap.String("order_no", orderNo),
			zap.Int64("campaign_id", campaignID.Int64()),
			zap.Error(err))
	}
}

// MarkPaid records the payment gateway callback. Gateways re-deliver, so any
// order already past pending is acknowledged as a success without changes.
func (s *Service) MarkPaid(ctx context.Context, orderNo, transactionID string) (*orderdomain.Order, error) {
	var order *orderdomain.Order
	var alreadySettled bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindByOrderNoForUpdate(ctx, tx, orderNo)
		if err != nil {
			return err
		}
		if order == nil {
			return orderdomain.ErrOrderNotFound
		}
		if order.Status != orderdomain.StatusPending {
			alreadySettled = true
			return nil
		}

		now := s.clock.Now()
		rows, err := s.repo.UpdateStatus(ctx, tx, order.ID, orderdomain.StatusPending, orderdomain.StatusPaid, map[string]any{
			"transaction_id": transactionID,
			"paid_at":        now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return orderdomain.ErrInvalidTransition
		}

		order.Status = orderdomain.StatusPaid
		order.TransactionID = &transactionID
		order.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadySettled {
		s.log.Info("payment callback replay ignored", zap.String("order_no", orderNo))
		return order, nil
	}

	if s.metrics != nil {
		s.metrics.OrdersPaidTotal.Inc()
	}
	s.log.Info("order paid",
		zap.String("order_no", orderNo),
		zap.String("transaction_id", transactionID))
	return order, nil
}

// Complete finishes a served order and then fires the loyalty side effects.
// The transition itself is transactional; the side effects run afterwards,
// each isolated so one failure never blocks the others or the completion.
func (s *Service) Complete(ctx context.Context, orderNo string) (*orderdomain.Order, error) {
	var order *orderdomain.Order
	var firstOrder bool
	var replayed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindByOrderNoForUpdate(ctx, tx, orderNo)
		if err != nil {
			return err
		}
		if order == nil {
			return orderdomain.ErrOrderNotFound
		}
		if order.Status == orderdomain.StatusCompleted {
			replayed = true
			return nil
		}
		if !order.Status.CanTransition(orderdomain.StatusCompleted) {
			return orderdomain.ErrInvalidTransition
		}

		// Decided before the update so this completion does not count itself.
		completed, err := s.repo.CountCompletedByUser(ctx, tx, order.UserID)
		if err != nil {
			return err
		}
		firstOrder = completed == 0

		now := s.clock.Now()
		rows, err := s.repo.UpdateStatus(ctx, tx, order.ID, order.Status, orderdomain.StatusCompleted, map[string]any{
			"completed_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return orderdomain.ErrInvalidTransition
		}

		order.Status = orderdomain.StatusCompleted
		order.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return order, nil
	}

	if s.metrics != nil {
		s.metrics.OrdersCompletedTotal.Inc()
	}
	s.log.Info("order completed", zap.String("order_no", orderNo))

	s.runCompletionTasks(ctx, order, firstOrder)
	return order, nil
}
