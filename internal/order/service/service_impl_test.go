package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/carewise/escortcare/internal/campaign/domain"
	campaignrepo "github.com/carewise/escortcare/internal/campaign/repository"
	catalogdomain "github.com/carewise/escortcare/internal/catalog/domain"
	catalogrepo "github.com/carewise/escortcare/internal/catalog/repository"
	"github.com/carewise/escortcare/internal/clock"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	couponrepo "github.com/carewise/escortcare/internal/coupon/repository"
	couponsvc "github.com/carewise/escortcare/internal/coupon/service"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	escortrepo "github.com/carewise/escortcare/internal/escort/repository"
	membershiprepo "github.com/carewise/escortcare/internal/membership/repository"
	"github.com/carewise/escortcare/internal/migration"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	orderrepo "github.com/carewise/escortcare/internal/order/repository"
	patientdomain "github.com/carewise/escortcare/internal/patient/domain"
	patientrepo "github.com/carewise/escortcare/internal/patient/repository"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	pointsrepo "github.com/carewise/escortcare/internal/points/repository"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	pricingrepo "github.com/carewise/escortcare/internal/pricing/repository"
	pricingsvc "github.com/carewise/escortcare/internal/pricing/service"
	referralrepo "github.com/carewise/escortcare/internal/referral/repository"
	referralsvc "github.com/carewise/escortcare/internal/referral/service"
	"github.com/carewise/escortcare/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type orderFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   orderdomain.Service

	userID    snowflake.ID
	patientID snowflake.ID
	serviceID snowflake.ID
}

func setupOrders(t *testing.T) *orderFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	pricing := pricingsvc.New(pricingsvc.Params{
		DB:             db,
		Log:            log,
		Clock:          fake,
		ConfigRepo:     pricingrepo.ProvideConfig(),
		CatalogRepo:    catalogrepo.Provide(),
		CampaignRepo:   campaignrepo.Provide(),
		CouponRepo:     couponrepo.Provide(),
		PointsRepo:     pointsrepo.Provide(),
		MembershipRepo: membershiprepo.Provide(),
	})
	coupons := couponsvc.New(couponsvc.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  couponrepo.Provide(),
	})
	referrals := referralsvc.New(referralsvc.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  referralrepo.Provide(),
	})

	svc := New(Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          fake,
		Repo:           orderrepo.Provide(),
		PatientRepo:    patientrepo.Provide(),
		CatalogRepo:    catalogrepo.Provide(),
		CampaignRepo:   campaignrepo.Provide(),
		CouponRepo:     couponrepo.Provide(),
		PointsRepo:     pointsrepo.Provide(),
		MembershipRepo: membershiprepo.Provide(),
		EscortRepo:     escortrepo.Provide(),
		Pricing:        pricing,
		CouponSvc:      coupons,
		ReferralSvc:    referrals,
	})

	f := &orderFixture{db: db, node: node, clock: fake, svc: svc}

	f.userID = node.Generate()
	f.patientID = node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:     f.patientID,
		UserID: f.userID,
		Name:   "test patient",
	}).Error)

	service := &catalogdomain.Service{
		ID:         node.Generate(),
		CategoryID: node.Generate(),
		Name:       "half-day escort",
		Price:      decimal.RequireFromString("100.00"),
		Active:     true,
	}
	require.NoError(t, db.Create(service).Error)
	f.serviceID = service.ID

	return f
}

func (f *orderFixture) createRequest() orderdomain.CreateRequest {
	return orderdomain.CreateRequest{
		ServiceID:  f.serviceID,
		PatientID:  f.patientID,
		HospitalID: f.node.Generate(),
		VisitDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:   "09:00-12:00",
		Quantity:   1,
	}
}

func (f *orderFixture) seedEscort(t *testing.T) *escortdomain.Escort {
	t.Helper()
	e := &escortdomain.Escort{
		ID:              f.node.Generate(),
		Name:            "test escort",
		HospitalID:      f.node.Generate(),
		Active:          true,
		AcceptingOrders: true,
		Rating:          escortdomain.DefaultRating,
	}
	require.NoError(t, f.db.Create(e).Error)
	return e
}

func (f *orderFixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&count).Error)
	return count
}

func TestCreatePersistsOrderWithSnapshot(t *testing.T) {
	f := setupOrders(t)

	order, err := f.svc.Create(context.Background(), f.userID, f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.Contains(t, order.OrderNo, "PE20260301")
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("100.00")), "total %s", order.TotalAmount)
	assert.True(t, order.PaidAmount.Equal(decimal.RequireFromString("100.00")), "paid %s", order.PaidAmount)

	var snap orderdomain.Snapshot
	require.NoError(t, f.db.First(&snap, "order_id = ?", order.ID).Error)
	assert.True(t, snap.FinalPrice.Equal(order.PaidAmount), "snapshot final %s", snap.FinalPrice)
	assert.Equal(t, string(pricingdomain.StackModeMultiply), snap.StackMode)

	var service catalogdomain.Service
	require.NoError(t, f.db.First(&service, "id = ?", f.serviceID).Error)
	assert.Equal(t, int64(1), service.OrderCount)
}

func TestCreateRejectsForeignPatient(t *testing.T) {
	f := setupOrders(t)

	otherPatient := f.node.Generate()
	require.NoError(t, f.db.Create(&patientdomain.Patient{
		ID:     otherPatient,
		UserID: f.node.Generate(),
		Name:   "someone else's patient",
	}).Error)

	req := f.createRequest()
	req.PatientID = otherPatient
	_, err := f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, patientdomain.ErrPatientNotOwned)
	assert.Equal(t, int64(0), f.countOrders(t))
}

func TestCreateWithEscortAssignsAndBlocksSlot(t *testing.T) {
	f := setupOrders(t)
	escort := f.seedEscort(t)

	req := f.createRequest()
	req.EscortID = &escort.ID
	order, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusAssigned, order.Status)

	var log escortdomain.StatusLog
	require.NoError(t, f.db.First(&log, "order_id = ?", order.ID).Error)
	assert.Equal(t, string(orderdomain.StatusAssigned), log.ToStatus)

	// Same escort, hospital, date and slot: rejected, nothing persisted.
	_, err = f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, escortdomain.ErrEscortSlotTaken)
	assert.Equal(t, int64(1), f.countOrders(t))

	// A different slot on the same day is fine.
	req.TimeSlot = "14:00-17:00"
	_, err = f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
}

func TestCreateConsumesCouponExactlyOnce(t *testing.T) {
	f := setupOrders(t)

	coupon := &coupondomain.UserCoupon{
		ID:              f.node.Generate(),
		UserID:          f.userID,
		Name:            "voucher",
		Type:            coupondomain.TypeAmount,
		Value:           decimal.RequireFromString("10.00"),
		Scope:           coupondomain.ScopeAll,
		StackWithMember: true,
		StackInMultiply: true,
		Status:          coupondomain.StatusUnused,
	}
	require.NoError(t, f.db.Create(coupon).Error)

	req := f.createRequest()
	req.CouponID = &coupon.ID
	order, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
	assert.True(t, order.PaidAmount.Equal(decimal.RequireFromString("90.00")), "paid %s", order.PaidAmount)

	var stored coupondomain.UserCoupon
	require.NoError(t, f.db.First(&stored, "id = ?", coupon.ID).Error)
	assert.Equal(t, coupondomain.StatusUsed, stored.Status)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, order.ID, *stored.OrderID)

	// The used coupon no longer discounts a second order.
	req.TimeSlot = "14:00-17:00"
	second, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
	assert.True(t, second.PaidAmount.Equal(decimal.RequireFromString("100.00")), "paid %s", second.PaidAmount)
}

func TestCreateDebitsPointsWithLedgerEntry(t *testing.T) {
	f := setupOrders(t)
	require.NoError(t, f.db.Create(&pointsdomain.Balance{UserID: f.userID, CurrentPoints: 2000}).Error)

	req := f.createRequest()
	req.PointsToUse = 1000
	order, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), order.PointsUsed)
	assert.True(t, order.PaidAmount.Equal(decimal.RequireFromString("90.00")), "paid %s", order.PaidAmount)

	var balance pointsdomain.Balance
	require.NoError(t, f.db.First(&balance, "user_id = ?", f.userID).Error)
	assert.Equal(t, int64(1000), balance.CurrentPoints)

	var record pointsdomain.Record
	require.NoError(t, f.db.First(&record, "user_id = ? AND type = ?", f.userID, pointsdomain.RecordRedeem).Error)
	assert.Equal(t, int64(-1000), record.Points)
	assert.Equal(t, order.ID, record.SourceID)
}

func TestCreateTakesLimitedCampaignStock(t *testing.T) {
	f := setupOrders(t)

	limit := int64(1)
	now := f.clock.Now()
	campaign := &campaigndomain.Campaign{
		ID:           f.node.Generate(),
		Name:         "limited promo",
		StartAt:      now.Add(-time.Hour),
		EndAt:        now.Add(time.Hour),
		Scope:        campaigndomain.ScopeAll,
		DiscountType: campaigndomain.DiscountAmount,
		Value:        decimal.RequireFromString("20.00"),
		StockLimit:   &limit,
		Active:       true,
	}
	require.NoError(t, f.db.Create(campaign).Error)

	order, err := f.svc.Create(context.Background(), f.userID, f.createRequest())
	require.NoError(t, err)
	assert.True(t, order.PaidAmount.Equal(decimal.RequireFromString("80.00")), "paid %s", order.PaidAmount)

	var stored campaigndomain.Campaign
	require.NoError(t, f.db.First(&stored, "id = ?", campaign.ID).Error)
	assert.Equal(t, int64(1), stored.StockUsed)

	var participation campaigndomain.Participation
	require.NoError(t, f.db.First(&participation, "order_id = ?", order.ID).Error)
	assert.Equal(t, campaign.ID, participation.CampaignID)

	// Stock exhausted: the whole second create rolls back.
	req := f.createRequest()
	req.TimeSlot = "14:00-17:00"
	_, err = f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, campaigndomain.ErrStockExhausted)
	assert.Equal(t, int64(1), f.countOrders(t))
}

func TestStalePointsQuoteAbortsWholeSettlement(t *testing.T) {
	f := setupOrders(t)
	require.NoError(t, f.db.Create(&pointsdomain.Balance{UserID: f.userID, CurrentPoints: 500}).Error)

	orders := orderrepo.Provide()
	points := pointsrepo.Provide()

	// A quote goes stale when the balance shrinks before settlement commits.
	// The locked re-read inside the transaction must reject the debit and
	// roll back everything already written, order row included.
	err := f.db.Transaction(func(tx *gorm.DB) error {
		order := &orderdomain.Order{
			ID:             f.node.Generate(),
			OrderNo:        "PE20260301000000001",
			UserID:         f.userID,
			PatientID:      f.patientID,
			ServiceID:      f.serviceID,
			HospitalID:     f.node.Generate(),
			VisitDate:      datatypes.Date(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
			TimeSlot:       "09:00-12:00",
			Quantity:       1,
			TotalAmount:    decimal.RequireFromString("100.00"),
			DiscountAmount: decimal.RequireFromString("10.00"),
			PaidAmount:     decimal.RequireFromString("90.00"),
			PointsUsed:     1000,
			Status:         orderdomain.StatusPending,
		}
		if err := orders.Insert(context.Background(), tx, order); err != nil {
			return err
		}
		return points.Debit(context.Background(), tx, f.node, f.userID, 1000, "order", order.ID)
	})
	assert.ErrorIs(t, err, pointsdomain.ErrInsufficientPoints)

	assert.Equal(t, int64(0), f.countOrders(t))

	var records int64
	require.NoError(t, f.db.Model(&pointsdomain.Record{}).Count(&records).Error)
	assert.Equal(t, int64(0), records)

	var balance pointsdomain.Balance
	require.NoError(t, f.db.First(&balance, "user_id = ?", f.userID).Error)
	assert.Equal(t, int64(500), balance.CurrentPoints)
}

func TestListPaginatesSameTimestampOrders(t *testing.T) {
	f := setupOrders(t)

	// All three orders carry the same fake-clock creation time, so paging
	// has to tell them apart by id.
	for _, slot := range []string{"08:00-09:00", "09:00-12:00", "14:00-17:00"} {
		req := f.createRequest()
		req.TimeSlot = slot
		_, err := f.svc.Create(context.Background(), f.userID, req)
		require.NoError(t, err)
	}

	first, info, err := f.svc.List(context.Background(), f.userID, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, info.HasMore)

	second, info, err := f.svc.List(context.Background(), f.userID, pagination.Pagination{
		PageSize:  2,
		PageToken: info.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.False(t, info.HasMore)

	seen := map[string]bool{}
	for _, o := range append(first, second...) {
		assert.False(t, seen[o.OrderNo], "order %s repeated across pages", o.OrderNo)
		seen[o.OrderNo] = true
	}
	assert.Len(t, seen, 3)
}

func TestCreateValidatesRequest(t *testing.T) {
	f := setupOrders(t)

	req := f.createRequest()
	req.Quantity = 0
	_, err := f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidRequest)

	req = f.createRequest()
	req.TimeSlot = "  "
	_, err = f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidRequest)

	req = f.createRequest()
	req.PointsToUse = -5
	_, err = f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidRequest)
}
