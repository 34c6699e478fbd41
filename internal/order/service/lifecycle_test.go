package service

import (
	"context"
	"testing"
	"time"

	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	referraldomain "github.com/carewise/escortcare/internal/referral/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *orderFixture) mustCreate(t *testing.T) *orderdomain.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), f.userID, f.createRequest())
	require.NoError(t, err)
	return order
}

func (f *orderFixture) forceStatus(t *testing.T, order *orderdomain.Order, status orderdomain.Status) {
	t.Helper()
	require.NoError(t, f.db.Model(&orderdomain.Order{}).
		Where("id = ?", order.ID).
		Update("status", status).Error)
}

func TestCancelAllowedOnlyBeforeWorkStarts(t *testing.T) {
	f := setupOrders(t)

	cancellable := []orderdomain.Status{
		orderdomain.StatusPending,
		orderdomain.StatusPaid,
		orderdomain.StatusConfirmed,
	}
	for _, status := range cancellable {
		order := f.mustCreate(t)
		f.forceStatus(t, order, status)

		got, err := f.svc.Cancel(context.Background(), f.userID, order.OrderNo)
		require.NoError(t, err, "status %s", status)
		assert.Equal(t, orderdomain.StatusCancelled, got.Status)
		assert.NotNil(t, got.CancelledAt)
	}

	blocked := []orderdomain.Status{
		orderdomain.StatusAssigned,
		orderdomain.StatusArrived,
		orderdomain.StatusInProgress,
		orderdomain.StatusCompleted,
		orderdomain.StatusCancelled,
	}
	for _, status := range blocked {
		order := f.mustCreate(t)
		f.forceStatus(t, order, status)

		_, err := f.svc.Cancel(context.Background(), f.userID, order.OrderNo)
		assert.ErrorIs(t, err, orderdomain.ErrCancelNotAllowed, "status %s", status)
	}
}

func TestCancelHidesOtherUsersOrders(t *testing.T) {
	f := setupOrders(t)
	order := f.mustCreate(t)

	_, err := f.svc.Cancel(context.Background(), f.node.Generate(), order.OrderNo)
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	f := setupOrders(t)
	order := f.mustCreate(t)

	paid, err := f.svc.MarkPaid(context.Background(), order.OrderNo, "txn-001")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPaid, paid.Status)
	require.NotNil(t, paid.TransactionID)
	assert.Equal(t, "txn-001", *paid.TransactionID)
	require.NotNil(t, paid.PaidAt)
	firstPaidAt := *paid.PaidAt

	// Gateway replay with a different transaction id: acknowledged, ignored.
	f.clock.Advance(time.Minute)
	replayed, err := f.svc.MarkPaid(context.Background(), order.OrderNo, "txn-002")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPaid, replayed.Status)

	var stored orderdomain.Order
	require.NoError(t, f.db.First(&stored, "id = ?", order.ID).Error)
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, "txn-001", *stored.TransactionID)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(firstPaidAt))
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	f := setupOrders(t)
	_, err := f.svc.MarkPaid(context.Background(), "PE20260301000000000", "txn-001")
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	f := setupOrders(t)
	order := f.mustCreate(t)

	_, err := f.svc.Complete(context.Background(), order.OrderNo)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidTransition)

	f.forceStatus(t, order, orderdomain.StatusInProgress)
	done, err := f.svc.Complete(context.Background(), order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	// Replay is a no-op success.
	again, err := f.svc.Complete(context.Background(), order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCompleted, again.Status)
}

func TestCompleteGrantsPointsWithFirstOrderBonus(t *testing.T) {
	f := setupOrders(t)

	order := f.mustCreate(t)
	f.forceStatus(t, order, orderdomain.StatusInProgress)
	_, err := f.svc.Complete(context.Background(), order.OrderNo)
	require.NoError(t, err)

	// 100 paid -> 100 points, plus the first-order bonus.
	var balance pointsdomain.Balance
	require.NoError(t, f.db.First(&balance, "user_id = ?", f.userID).Error)
	assert.Equal(t, int64(200), balance.CurrentPoints)

	// The second completion earns only the paid-amount points.
	req := f.createRequest()
	req.TimeSlot = "14:00-17:00"
	second, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
	f.forceStatus(t, second, orderdomain.StatusInProgress)
	_, err = f.svc.Complete(context.Background(), second.OrderNo)
	require.NoError(t, err)

	require.NoError(t, f.db.First(&balance, "user_id = ?", f.userID).Error)
	assert.Equal(t, int64(300), balance.CurrentPoints)
}

func TestCompleteDeliversReferralRewardOnce(t *testing.T) {
	f := setupOrders(t)

	inviterID := f.node.Generate()
	require.NoError(t, f.db.Create(&referraldomain.Binding{
		ID:        f.node.Generate(),
		InviterID: inviterID,
		InviteeID: f.userID,
	}).Error)

	order := f.mustCreate(t)
	f.forceStatus(t, order, orderdomain.StatusInProgress)
	_, err := f.svc.Complete(context.Background(), order.OrderNo)
	require.NoError(t, err)

	var rewards []referraldomain.Reward
	require.NoError(t, f.db.Find(&rewards, "invitee_id = ?", f.userID).Error)
	require.Len(t, rewards, 1)
	assert.Equal(t, inviterID, rewards[0].InviterID)

	// A later order is not a first order, so no second reward.
	req := f.createRequest()
	req.TimeSlot = "14:00-17:00"
	second, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
	f.forceStatus(t, second, orderdomain.StatusInProgress)
	_, err = f.svc.Complete(context.Background(), second.OrderNo)
	require.NoError(t, err)

	require.NoError(t, f.db.Find(&rewards, "invitee_id = ?", f.userID).Error)
	assert.Len(t, rewards, 1)
}

func TestCompleteUpgradesMembershipTier(t *testing.T) {
	f := setupOrders(t)

	silver := &membershipdomain.Tier{
		ID:              f.node.Generate(),
		Name:            "Silver",
		Level:           1,
		DiscountPercent: decimal.RequireFromString("5"),
		SpendThreshold:  decimal.Zero,
	}
	gold := &membershipdomain.Tier{
		ID:              f.node.Generate(),
		Name:            "Gold",
		Level:           2,
		DiscountPercent: decimal.RequireFromString("10"),
		SpendThreshold:  decimal.RequireFromString("90.00"),
	}
	require.NoError(t, f.db.Create(silver).Error)
	require.NoError(t, f.db.Create(gold).Error)

	membership := &membershipdomain.Membership{
		ID:              f.node.Generate(),
		UserID:          f.userID,
		TierID:          silver.ID,
		DiscountPercent: silver.DiscountPercent,
		ExpireAt:        f.clock.Now().Add(365 * 24 * time.Hour),
	}
	require.NoError(t, f.db.Create(membership).Error)

	// Paid 95.00 after the 5% member discount, past the gold threshold.
	order := f.mustCreate(t)
	f.forceStatus(t, order, orderdomain.StatusInProgress)
	_, err := f.svc.Complete(context.Background(), order.OrderNo)
	require.NoError(t, err)

	var stored membershipdomain.Membership
	require.NoError(t, f.db.First(&stored, "id = ?", membership.ID).Error)
	assert.Equal(t, gold.ID, stored.TierID)
	assert.True(t, stored.DiscountPercent.Equal(gold.DiscountPercent), "discount %s", stored.DiscountPercent)
}

func TestCompleteGrantsTemplateCoupons(t *testing.T) {
	f := setupOrders(t)

	require.NoError(t, f.db.Create(&coupondomain.Template{
		ID:        f.node.Generate(),
		Name:      "thanks voucher",
		Trigger:   coupondomain.TriggerOrderCompleted,
		Type:      coupondomain.TypeAmount,
		Value:     decimal.RequireFromString("5.00"),
		Scope:     coupondomain.ScopeAll,
		ValidDays: 30,
		Active:    true,
	}).Error)
	require.NoError(t, f.db.Create(&coupondomain.Template{
		ID:             f.node.Generate(),
		Name:           "big spender voucher",
		Trigger:        coupondomain.TriggerSpendMilestone,
		SpendThreshold: decimal.RequireFromString("1000.00"),
		Type:           coupondomain.TypeAmount,
		Value:          decimal.RequireFromString("50.00"),
		Scope:          coupondomain.ScopeAll,
		ValidDays:      30,
		Active:         true,
	}).Error)

	order := f.mustCreate(t)
	f.forceStatus(t, order, orderdomain.StatusInProgress)
	_, err := f.svc.Complete(context.Background(), order.OrderNo)
	require.NoError(t, err)

	// The completion trigger fires; the 1000 spend milestone does not.
	var coupons []coupondomain.UserCoupon
	require.NoError(t, f.db.Find(&coupons, "user_id = ?", f.userID).Error)
	require.Len(t, coupons, 1)
	assert.Equal(t, "thanks voucher", coupons[0].Name)
	assert.Equal(t, coupondomain.StatusUnused, coupons[0].Status)
}
