package service

import (
	"context"
	"math"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/clock"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	"github.com/carewise/escortcare/internal/observability/metrics"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	"github.com/carewise/escortcare/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// wilsonZ is the z-score for a 95% confidence interval.
	wilsonZ = 1.96
	// ratingBaseline is the neutral rating that thin review histories are
	// pulled toward.
	ratingBaseline = 4.0
	// fullWeightReviews is the review count at which the computed rating
	// stands entirely on its own, with no pull toward the baseline.
	fullWeightReviews = 20
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Metrics    *metrics.Metrics `optional:"true"`
	Repo       reviewdomain.Repository
	OrderRepo  orderdomain.Repository
	EscortRepo escortdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	metrics    *metrics.Metrics
	repo       reviewdomain.Repository
	orderRepo  orderdomain.Repository
	escortRepo escortdomain.Repository
}

func New(p Params) reviewdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("review.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		metrics:    p.Metrics,
		repo:       p.Repo,
		orderRepo:  p.OrderRepo,
		escortRepo: p.EscortRepo,
	}
}

func (s *Service) RecordReview(ctx context.Context, req reviewdomain.CreateRequest) (*reviewdomain.Review, error) {
	if req.Stars < 1 || req.Stars > 5 {
		return nil, reviewdomain.ErrInvalidStars
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != req.UserID {
		return nil, orderdomain.ErrOrderNotFound
	}
	if order.Status != orderdomain.StatusCompleted || order.EscortID == nil || *order.EscortID != req.EscortID {
		return nil, reviewdomain.ErrOrderNotReviewable
	}

	review := &reviewdomain.Review{
		ID:       s.genID.Generate(),
		EscortID: req.EscortID,
		OrderID:  req.OrderID,
		UserID:   req.UserID,
		Stars:    req.Stars,
		Content:  req.Content,
		Visible:  true,
	}
	review.CreatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, review); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return reviewdomain.ErrDuplicateReview
			}
			return err
		}
		return s.recomputeTx(ctx, tx, req.EscortID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("review recorded",
		zap.Int64("escort_id", req.EscortID.Int64()),
		zap.Int("stars", req.Stars))
	return review, nil
}

func (s *Service) RecomputeRating(ctx context.Context, escortID snowflake.ID) (float64, error) {
	var rating float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rating, err = s.recomputeWith(ctx, tx, escortID)
		return err
	})
	return rating, err
}

func (s *Service) recomputeTx(ctx context.Context, tx *gorm.DB, escortID snowflake.ID) error {
	_, err := s.recomputeWith(ctx, tx, escortID)
	return err
}

func (s *Service) recomputeWith(ctx context.Context, tx *gorm.DB, escortID snowflake.ID) (float64, error) {
	total, positive, err := s.repo.CountsByEscort(ctx, tx, escortID)
	if err != nil {
		return 0, err
	}

	rating := ComputeRating(positive, total)
	if err := s.escortRepo.UpdateRating(ctx, tx, escortID, rating, total); err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.RatingRecomputesTotal.Inc()
	}
	return rating, nil
}

// ComputeRating turns review counts into a public rating on the 3.0-5.0
// scale. It takes the Wilson score lower bound of the positive-review
// proportion, so a short perfect streak scores below a long strong record,
// then pulls thin histories toward a neutral baseline. An escort with no
// reviews keeps the default rating.
func ComputeRating(positive, total int64) float64 {
	if total <= 0 {
		return escortdomain.DefaultRating
	}

	lower := wilsonLowerBound(positive, total)
	mapped := escortdomain.RatingFloor + lower*(escortdomain.RatingCeil-escortdomain.RatingFloor)

	weight := float64(total) / fullWeightReviews
	if weight > 1 {
		weight = 1
	}
	blended := ratingBaseline + weight*(mapped-ratingBaseline)

	return math.Round(blended*10) / 10
}

// wilsonLowerBound is the lower bound of the Wilson score interval for a
// Bernoulli proportion of positive reviews among total reviews.
func wilsonLowerBound(positive, total int64) float64 {
	n := float64(total)
	p := float64(positive) / n
	z := wilsonZ
	z2 := z * z

	denom := 1 + z2/n
	center := p + z2/(2*n)
	margin := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n))

	lower := (center - margin) / denom
	if lower < 0 {
		return 0
	}
	return lower
}
