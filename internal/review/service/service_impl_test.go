package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/clock"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	escortrepo "github.com/carewise/escortcare/internal/escort/repository"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	orderrepo "github.com/carewise/escortcare/internal/order/repository"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	reviewrepo "github.com/carewise/escortcare/internal/review/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestComputeRatingNoReviewsKeepsDefault(t *testing.T) {
	assert.Equal(t, escortdomain.DefaultRating, ComputeRating(0, 0))
}

func TestComputeRatingPerfectStreakStaysBelowCeiling(t *testing.T) {
	rating := ComputeRating(20, 20)
	assert.Equal(t, 4.7, rating)
	assert.Less(t, rating, escortdomain.RatingCeil)
}

func TestComputeRatingMixedRecordScoresLower(t *testing.T) {
	perfect := ComputeRating(20, 20)
	mixed := ComputeRating(16, 20)
	assert.Equal(t, 4.2, mixed)
	assert.Less(t, mixed, perfect)
	assert.Greater(t, mixed, 4.0)
}

func TestComputeRatingMoreEvidenceScoresHigher(t *testing.T) {
	// Same 80% positive share, but a longer record earns more confidence.
	thin := ComputeRating(8, 10)
	thick := ComputeRating(80, 100)
	assert.Equal(t, 4.0, thin)
	assert.Equal(t, 4.4, thick)
	assert.Less(t, thin, thick)
}

func TestComputeRatingAllNegativeBoundedByFloor(t *testing.T) {
	few := ComputeRating(0, 5)
	assert.Equal(t, 3.8, few)

	many := ComputeRating(0, 100)
	assert.Equal(t, escortdomain.RatingFloor, many)

	for _, n := range []int64{1, 5, 20, 100, 1000} {
		rating := ComputeRating(0, n)
		assert.GreaterOrEqual(t, rating, escortdomain.RatingFloor, "n=%d", n)
		assert.Less(t, rating, 4.0, "n=%d", n)
	}
}

func TestComputeRatingAlwaysInBounds(t *testing.T) {
	for total := int64(1); total <= 50; total++ {
		for positive := int64(0); positive <= total; positive++ {
			rating := ComputeRating(positive, total)
			assert.GreaterOrEqual(t, rating, escortdomain.RatingFloor, "%d/%d", positive, total)
			assert.LessOrEqual(t, rating, escortdomain.RatingCeil, "%d/%d", positive, total)
		}
	}
}

type reviewFixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  reviewdomain.Service

	escort *escortdomain.Escort
	userID snowflake.ID
}

func setupReviews(t *testing.T) *reviewFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&escortdomain.Escort{},
		&escortdomain.StatusLog{},
		&orderdomain.Order{},
		&orderdomain.Snapshot{},
		&reviewdomain.Review{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Repo:       reviewrepo.Provide(),
		OrderRepo:  orderrepo.Provide(),
		EscortRepo: escortrepo.Provide(),
	})

	escort := &escortdomain.Escort{
		ID:              node.Generate(),
		Name:            "test escort",
		HospitalID:      node.Generate(),
		Active:          true,
		AcceptingOrders: true,
		Rating:          escortdomain.DefaultRating,
	}
	require.NoError(t, db.Create(escort).Error)

	return &reviewFixture{
		db:     db,
		node:   node,
		svc:    svc,
		escort: escort,
		userID: node.Generate(),
	}
}

func (f *reviewFixture) seedCompletedOrder(t *testing.T) *orderdomain.Order {
	t.Helper()
	order := &orderdomain.Order{
		ID:             f.node.Generate(),
		OrderNo:        fmt.Sprintf("PE20260301%09d", f.node.Generate().Int64()%1_000_000_000),
		UserID:         f.userID,
		PatientID:      f.node.Generate(),
		ServiceID:      f.node.Generate(),
		EscortID:       &f.escort.ID,
		HospitalID:     f.node.Generate(),
		VisitDate:      datatypes.Date(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)),
		TimeSlot:       "09:00-12:00",
		Quantity:       1,
		TotalAmount:    decimal.RequireFromString("100.00"),
		DiscountAmount: decimal.Zero,
		PaidAmount:     decimal.RequireFromString("100.00"),
		Status:         orderdomain.StatusCompleted,
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func TestRecordReviewUpdatesEscortRating(t *testing.T) {
	f := setupReviews(t)
	order := f.seedCompletedOrder(t)

	review, err := f.svc.RecordReview(context.Background(), reviewdomain.CreateRequest{
		EscortID: f.escort.ID,
		OrderID:  order.ID,
		UserID:   f.userID,
		Stars:    5,
		Content:  "patient and careful",
	})
	require.NoError(t, err)
	assert.True(t, review.Visible)

	var stored escortdomain.Escort
	require.NoError(t, f.db.First(&stored, "id = ?", f.escort.ID).Error)
	assert.Equal(t, int64(1), stored.RatingCount)
	assert.Equal(t, ComputeRating(1, 1), stored.Rating)
}

func TestRecordReviewRejectsDuplicatePerOrder(t *testing.T) {
	f := setupReviews(t)
	order := f.seedCompletedOrder(t)

	req := reviewdomain.CreateRequest{
		EscortID: f.escort.ID,
		OrderID:  order.ID,
		UserID:   f.userID,
		Stars:    4,
	}
	_, err := f.svc.RecordReview(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.RecordReview(context.Background(), req)
	assert.ErrorIs(t, err, reviewdomain.ErrDuplicateReview)
}

func TestRecordReviewValidation(t *testing.T) {
	f := setupReviews(t)
	order := f.seedCompletedOrder(t)

	_, err := f.svc.RecordReview(context.Background(), reviewdomain.CreateRequest{
		EscortID: f.escort.ID,
		OrderID:  order.ID,
		UserID:   f.userID,
		Stars:    6,
	})
	assert.ErrorIs(t, err, reviewdomain.ErrInvalidStars)

	// Someone else's order reads as missing.
	_, err = f.svc.RecordReview(context.Background(), reviewdomain.CreateRequest{
		EscortID: f.escort.ID,
		OrderID:  order.ID,
		UserID:   f.node.Generate(),
		Stars:    5,
	})
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)

	// Orders still in flight cannot be reviewed.
	pending := f.seedCompletedOrder(t)
	require.NoError(t, f.db.Model(&orderdomain.Order{}).
		Where("id = ?", pending.ID).
		Update("status", orderdomain.StatusInProgress).Error)
	_, err = f.svc.RecordReview(context.Background(), reviewdomain.CreateRequest{
		EscortID: f.escort.ID,
		OrderID:  pending.ID,
		UserID:   f.userID,
		Stars:    5,
	})
	assert.ErrorIs(t, err, reviewdomain.ErrOrderNotReviewable)
}

func TestRecomputeRatingCountsOnlyVisibleReviews(t *testing.T) {
	f := setupReviews(t)

	for i := 0; i < 3; i++ {
		order := f.seedCompletedOrder(t)
		_, err := f.svc.RecordReview(context.Background(), reviewdomain.CreateRequest{
			EscortID: f.escort.ID,
			OrderID:  order.ID,
			UserID:   f.userID,
			Stars:    5,
		})
		require.NoError(t, err)
	}

	// Hide one review and recompute: it no longer counts.
	require.NoError(t, f.db.Model(&reviewdomain.Review{}).
		Where("escort_id = ?", f.escort.ID).
		Limit(1).
		Update("visible", false).Error)

	rating, err := f.svc.RecomputeRating(context.Background(), f.escort.ID)
	require.NoError(t, err)
	assert.Equal(t, ComputeRating(2, 2), rating)

	var stored escortdomain.Escort
	require.NoError(t, f.db.First(&stored, "id = ?", f.escort.ID).Error)
	assert.Equal(t, int64(2), stored.RatingCount)
}
